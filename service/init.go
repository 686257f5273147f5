/*
 * @module service/init
 * @description 服务初始化模块,负责数据库连接、迁移、对账引擎与周边服务的装配
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 数据库初始化 -> 迁移 -> 规则表装配 -> 引擎与运行服务装配
 * @rules 优先使用DATABASE_URL连接Postgres,未配置时回落到本地SQLite文件;
 *        Kafka/Redis均为可选,未配置时对应能力关闭
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite
 * @refs dev_docs/model.md, main.go
 */

package service

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recon-service/client"
	"recon-service/service/cache"
	"recon-service/service/database"
	"recon-service/service/event"
	"recon-service/service/lock"
	"recon-service/service/recon"
	"recon-service/service/reconrun"
)

var (
	DB               *gorm.DB
	GlobalEngine     *recon.Engine
	GlobalRunService *reconrun.Service
	GlobalPublisher  *event.DivergencePublisher
	GlobalRunLock    lock.RunLock
	GlobalXenaClient *client.XenaClient
	GlobalGDCClient  *client.GDCClient
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var err error
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		DB, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	} else {
		// 本地/CLI运行回落到SQLite文件
		dbPath := getEnvWithDefault("RECON_DB_PATH", "recon.db")
		DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	}
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	log.Println("数据库连接成功")
}

// runMigrations 执行数据库迁移
func runMigrations() {
	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
}

// initServices 装配对账引擎与周边服务
func initServices() {
	GlobalGDCClient = client.NewGDCClient()
	GlobalXenaClient = client.NewXenaClient()

	// Redis样本查询缓存与调度运行锁,可选
	if os.Getenv("REDIS_HOST") != "" {
		sampleCache, err := cache.NewRedisSampleCache()
		if err != nil {
			slog.Warn("样本查询缓存初始化失败,继续以无缓存模式运行", "error", err)
		} else {
			GlobalXenaClient.SetCache(sampleCache)
		}

		runLock, err := lock.NewRedisRunLock()
		if err != nil {
			slog.Warn("运行锁初始化失败,定时对账仅做单实例防重", "error", err)
		} else {
			GlobalRunLock = runLock
		}
	}

	// 项目规则表:内置规则 + 可选脚本规则
	overrides := recon.NewOverrideTable()
	if scriptPath := os.Getenv("RECON_OVERRIDE_SCRIPT"); scriptPath != "" {
		extra, err := recon.LoadScriptOverrides(scriptPath)
		if err != nil {
			log.Fatalf("加载规则脚本失败: %v", err)
		}
		overrides.Merge(extra)
		slog.Info("脚本规则加载完成", "script", scriptPath, "count", len(extra))
	}

	workers := 1
	if val := os.Getenv("RECON_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			workers = n
		}
	}

	GlobalEngine = recon.NewEngine(GlobalGDCClient, GlobalXenaClient, overrides, workers)

	// Kafka分歧事件发布,可选
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := getEnvWithDefault("KAFKA_TOPIC", event.DefaultTopic)
		GlobalPublisher = event.NewDivergencePublisher(strings.Split(brokers, ","), topic)
		slog.Info("分歧事件发布已启用", "brokers", brokers, "topic", topic)
	}

	GlobalRunService = reconrun.NewService(DB, GlobalEngine, GlobalPublisher)
}

// getEnvWithDefault 获取环境变量,不存在时返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
