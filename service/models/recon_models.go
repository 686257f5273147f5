/*
 * @module service/models/recon_models
 * @description 对账运行记录与项目报告模型定义,持久化每次对账的结果
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 对账运行创建 -> 项目报告写入 -> 运行状态更新
 * @rules 遵循数据库设计规范,确保运行历史可追溯
 * @dependencies gorm.io/gorm, github.com/google/uuid, github.com/lib/pq
 * @refs service/reconrun/service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 对账运行状态
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// 对账触发方式
const (
	TriggerCLI  = "cli"
	TriggerAPI  = "api"
	TriggerCron = "cron"
)

// ReconRun 对账运行记录
type ReconRun struct {
	ID                  string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Mode                string     `json:"mode" gorm:"not null;size:20"` // full, single
	TriggerType         string     `json:"trigger_type" gorm:"not null;size:20"`
	Status              string     `json:"status" gorm:"not null;default:'running';size:20"`
	ProjectCount        int        `json:"project_count" gorm:"not null;default:0"`
	FailedProjectCount  int        `json:"failed_project_count" gorm:"not null;default:0"`
	MissingDatasetTotal int        `json:"missing_dataset_total" gorm:"not null;default:0"`
	WrongCountTotal     int        `json:"wrong_count_total" gorm:"not null;default:0"`
	StartedAt           time.Time  `json:"started_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	FinishedAt          *time.Time `json:"finished_at"`
	// 关联关系
	Reports []ProjectReport `json:"reports,omitempty" gorm:"foreignKey:RunID"`
}

// ProjectReport 单项目对账报告
type ProjectReport struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RunID              string           `json:"run_id" gorm:"not null;type:varchar(36);index"`
	ProjectID          string           `json:"project_id" gorm:"not null;size:100;index"`
	MissingDatasets    pq.StringArray   `json:"missing_datasets" gorm:"type:text[]"`
	WrongCountDatasets pq.StringArray   `json:"wrong_count_datasets" gorm:"type:text[]"`
	MissingDatatypes   pq.StringArray   `json:"missing_datatypes" gorm:"type:text[]"`
	MissingIDs         JSONB            `json:"missing_ids" gorm:"type:jsonb"`      // 数据集 -> 目标侧缺失的样本ID列表
	TargetOnlyIDs      JSONB            `json:"target_only_ids" gorm:"type:jsonb"`  // 数据集 -> 仅目标侧存在的样本ID列表
	UnmatchedIDs       JSONBStringArray `json:"unmatched_ids" gorm:"type:jsonb"`    // 未匹配任何数据集的样本ID(去重)
	Error              string           `json:"error" gorm:"size:2000"`
	CreatedAt          time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate 创建前自动生成UUID主键
func (r *ReconRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (p *ProjectReport) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
