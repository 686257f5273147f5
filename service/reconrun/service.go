/*
 * @module service/reconrun/service
 * @description 对账运行服务,编排一次完整对账:创建运行记录、调用引擎、落库项目报告、
 *              发布分歧事件、更新运行状态
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 运行记录创建 -> 引擎执行 -> 报告落库 -> 事件发布 -> 状态更新
 * @rules 单项目失败计入failed_project_count但不中止运行;事件发布失败只记录日志
 * @dependencies gorm.io/gorm, recon-service/service/recon, recon-service/service/models
 * @refs service/init.go, api/controllers/recon_controller.go, main.go
 */

package reconrun

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"recon-service/service/event"
	"recon-service/service/metrics"
	"recon-service/service/models"
	"recon-service/service/recon"
)

// Service 对账运行服务
type Service struct {
	db        *gorm.DB
	engine    *recon.Engine
	publisher *event.DivergencePublisher // 可为nil,未配置Kafka时不发布事件
}

// NewService 创建对账运行服务
func NewService(db *gorm.DB, engine *recon.Engine, publisher *event.DivergencePublisher) *Service {
	return &Service{
		db:        db,
		engine:    engine,
		publisher: publisher,
	}
}

// Run 执行一次对账
// projectIDs为空时对参考清单的全部项目运行;返回运行记录与按输入顺序排列的项目结果
func (s *Service) Run(ctx context.Context, projectIDs []string, triggerType string) (*models.ReconRun, []recon.ProjectResult, error) {
	mode := "full"
	if len(projectIDs) > 0 {
		mode = "single"
	} else {
		var err error
		projectIDs, err = s.engine.ListProjects(ctx)
		if err != nil {
			metrics.RunsTotal.WithLabelValues(models.RunStatusFailed).Inc()
			return nil, nil, err
		}
	}

	run := &models.ReconRun{
		Mode:         mode,
		TriggerType:  triggerType,
		Status:       models.RunStatusRunning,
		ProjectCount: len(projectIDs),
		StartedAt:    time.Now(),
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, nil, fmt.Errorf("创建运行记录失败: %w", err)
	}
	slog.Info("对账运行开始", "run_id", run.ID, "mode", mode,
		"trigger", triggerType, "project_count", len(projectIDs))

	results := s.engine.ReconcileProjects(ctx, projectIDs)

	for _, result := range results {
		if err := s.saveReport(run.ID, result); err != nil {
			slog.Error("项目报告落库失败", "run_id", run.ID,
				"project_id", result.ProjectID, "error", err)
		}
		if result.Err != nil {
			run.FailedProjectCount++
			continue
		}
		run.MissingDatasetTotal += len(result.MissingDatasets)
		run.WrongCountTotal += len(result.WrongCountDatasets)

		if s.publisher != nil {
			if err := s.publisher.PublishResult(ctx, run.ID, result); err != nil {
				slog.Error("分歧事件发布失败", "run_id", run.ID,
					"project_id", result.ProjectID, "error", err)
			}
		}
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	if run.FailedProjectCount == len(projectIDs) && len(projectIDs) > 0 {
		run.Status = models.RunStatusFailed
	}
	if err := s.db.Save(run).Error; err != nil {
		return run, results, fmt.Errorf("更新运行记录失败: %w", err)
	}

	metrics.RunsTotal.WithLabelValues(run.Status).Inc()
	slog.Info("对账运行结束", "run_id", run.ID, "status", run.Status,
		"missing_dataset_total", run.MissingDatasetTotal,
		"wrong_count_total", run.WrongCountTotal,
		"failed_projects", run.FailedProjectCount)
	return run, results, nil
}

// saveReport 持久化单项目报告
func (s *Service) saveReport(runID string, result recon.ProjectResult) error {
	report := &models.ProjectReport{
		RunID:              runID,
		ProjectID:          result.ProjectID,
		MissingDatasets:    pq.StringArray(result.MissingDatasets),
		WrongCountDatasets: pq.StringArray(result.WrongCountDatasets),
		MissingDatatypes:   pq.StringArray(result.MissingDatatypes),
		MissingIDs:         toJSONB(result.MissingIDs),
		TargetOnlyIDs:      toJSONB(result.TargetOnlyIDs),
		UnmatchedIDs:       models.JSONBStringArray(result.UnmatchedIDs),
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}
	return s.db.Create(report).Error
}

// toJSONB 将字符串集合映射转换为JSONB存储结构
func toJSONB(m map[string][]string) models.JSONB {
	if m == nil {
		return nil
	}
	out := make(models.JSONB, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetRuns 查询对账运行列表,按开始时间倒序
func (s *Service) GetRuns(limit int) ([]models.ReconRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []models.ReconRun
	err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("查询运行列表失败: %w", err)
	}
	return runs, nil
}

// GetRun 查询单次运行及其项目报告
func (s *Service) GetRun(id string) (*models.ReconRun, error) {
	var run models.ReconRun
	err := s.db.Preload("Reports").First(&run, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return &run, nil
}
