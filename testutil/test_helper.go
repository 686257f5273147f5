/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference dev_docs/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具,确保测试环境的一致性
 * @dependencies gorm, sqlite, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recon-service/service/models"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.ReconRun{},
		&models.ProjectReport{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// Close 关闭测试数据库
func (t *TestDB) Close() {
	sqlDB, err := t.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// CreateTestRun 创建测试用对账运行记录
func (t *TestDB) CreateTestRun(status string) *models.ReconRun {
	run := &models.ReconRun{
		Mode:        "full",
		TriggerType: models.TriggerCLI,
		Status:      status,
		StartedAt:   time.Now(),
	}
	if err := t.DB.Create(run).Error; err != nil {
		panic(fmt.Sprintf("failed to create test run: %v", err))
	}
	return run
}

// RawFileRecord 构造一条参考清单原始文件记录
// submitterID为空时不挂样本列表,tissueType默认Normal
func RawFileRecord(fileID, dataType, workflowType, platform, strategy, submitterID, tissueType string) map[string]interface{} {
	raw := map[string]interface{}{
		"file_id":               fileID,
		"data_type":             dataType,
		"platform":              platform,
		"experimental_strategy": strategy,
	}
	if workflowType != "" {
		raw["analysis"] = map[string]interface{}{"workflow_type": workflowType}
	}
	if submitterID != "" {
		if tissueType == "" {
			tissueType = "Normal"
		}
		raw["cases"] = []interface{}{
			map[string]interface{}{
				"submitter_id": "case-" + submitterID,
				"samples": []interface{}{
					map[string]interface{}{
						"submitter_id": submitterID,
						"tissue_type":  tissueType,
					},
				},
			},
		}
	}
	return raw
}
