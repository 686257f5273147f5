/*
 * @module service/recon/engine
 * @description 对账引擎编排,单项目内顺序执行归一化->分类->构建->比对,
 *              跨项目使用有界工作池并行,结果按输入顺序返回
 * @architecture 分层架构 - 编排层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 拉取文件清单 -> 归一化 -> 分类 -> 剪除 -> 逐数据集比对 -> 项目结果
 * @rules 单项目清单调用失败只中止该项目,不影响其他项目;不自动重试;
 *        最终结果顺序由输入顺序决定,与完成顺序无关
 * @dependencies github.com/spf13/cast, recon-service/service/catalog, recon-service/service/metrics
 * @refs service/reconrun/service.go, client/gdc_client.go, client/xena_client.go
 */

package recon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"recon-service/service/catalog"
	"recon-service/service/metrics"
)

// ReferenceInventory 参考清单接口,文件/样本元数据的权威来源
type ReferenceInventory interface {
	ListProjects(ctx context.Context) ([]string, error)
	ListFiles(ctx context.Context, projectID string) ([]map[string]interface{}, error)
}

// TargetInventory 目标清单接口,被验证方,按(项目,数据集名)查询成员样本ID
// 返回空列表是合法的"不存在"应答
type TargetInventory interface {
	DatasetSamples(ctx context.Context, projectID, datasetName string) ([]string, error)
}

// Engine 对账引擎
type Engine struct {
	reference  ReferenceInventory
	target     TargetInventory
	shapes     []catalog.ShapeDefinition
	overrides  *OverrideTable
	normalizer *Normalizer
	workers    int
}

// NewEngine 创建对账引擎
// workers小于1时按1处理(逐项目串行)
func NewEngine(reference ReferenceInventory, target TargetInventory, overrides *OverrideTable, workers int) *Engine {
	if overrides == nil {
		overrides = NewOverrideTable()
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		reference:  reference,
		target:     target,
		shapes:     catalog.All(),
		overrides:  overrides,
		normalizer: NewNormalizer(overrides),
		workers:    workers,
	}
}

// ListProjects 列出参考清单中的全部项目ID
func (e *Engine) ListProjects(ctx context.Context) ([]string, error) {
	projects, err := e.reference.ListProjects(ctx)
	if err != nil {
		metrics.InventoryErrors.WithLabelValues("reference").Inc()
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}
	return projects, nil
}

// ReconcileProjects 对多个项目执行对账
// 有界工作池并行,结果切片按projectIDs顺序排列
func (e *Engine) ReconcileProjects(ctx context.Context, projectIDs []string) []ProjectResult {
	results := make([]ProjectResult, len(projectIDs))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, projectID := range projectIDs {
		wg.Add(1)
		go func(idx int, pid string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = e.ReconcileProject(ctx, pid)
		}(i, projectID)
	}
	wg.Wait()
	return results
}

// ReconcileProject 对单个项目执行完整对账流程
func (e *Engine) ReconcileProject(ctx context.Context, projectID string) ProjectResult {
	slog.Info("开始项目对账", "project_id", projectID)
	result := NewProjectResult(projectID)

	rawFiles, err := e.reference.ListFiles(ctx, projectID)
	if err != nil {
		metrics.InventoryErrors.WithLabelValues("reference").Inc()
		metrics.ProjectsFailed.Inc()
		result.Err = fmt.Errorf("获取文件清单失败: %w", err)
		slog.Error("项目对账中止", "project_id", projectID, "error", result.Err)
		return result
	}

	// 归一化与分类:每条存活记录恰好进入一个数据集或未匹配列表
	datasets := NewDatasets(projectID, e.shapes)
	var unmatched []FileRecord
	for _, raw := range rawFiles {
		rec, ok := e.normalizer.Normalize(raw, projectID)
		if !ok {
			continue
		}
		if !Classify(rec, datasets) {
			unmatched = append(unmatched, rec)
		}
	}
	datasets = Prune(datasets)
	slog.Info("分类完成", "project_id", projectID,
		"dataset_count", len(datasets), "unmatched_count", len(unmatched))

	ov := e.overrides.For(projectID)
	for _, ds := range datasets {
		targetIDs, err := e.target.DatasetSamples(ctx, projectID, ds.Shape.Name)
		if err != nil {
			metrics.InventoryErrors.WithLabelValues("target").Inc()
			metrics.ProjectsFailed.Inc()
			result.Err = fmt.Errorf("查询目标数据集 %s 失败: %w", ds.Shape.Name, err)
			slog.Error("项目对账中止", "project_id", projectID, "error", result.Err)
			return result
		}

		diff := DiffDataset(ds, targetIDs, ov)
		if diff.Missing {
			// 缺失数据集的成员并入未匹配池,一并计入缺失数据类型
			result.MissingDatasets = append(result.MissingDatasets, ds.Shape.Name)
			unmatched = append(unmatched, ds.Files...)
			metrics.MissingDatasets.Inc()
		}
		if diff.WrongCount {
			result.WrongCountDatasets = append(result.WrongCountDatasets, ds.Shape.Name)
			metrics.WrongCountDatasets.Inc()
		}
		if diff.Anomaly {
			metrics.CountAnomalies.Inc()
			slog.Error("目标侧样本数多于源侧", "project_id", projectID,
				"dataset", ds.Shape.Name,
				"source_count", diff.SourceCount, "target_count", diff.TargetCount)
		}
		result.MissingIDs[ds.Shape.Name] = diff.OnlyInSource
		result.TargetOnlyIDs[ds.Shape.Name] = diff.OnlyInTarget

		slog.Info("数据集比对完成", "project_id", projectID, "dataset", ds.Shape.Name,
			"source_count", diff.SourceCount, "target_count", diff.TargetCount,
			"only_in_source", len(diff.OnlyInSource), "only_in_target", len(diff.OnlyInTarget))
	}

	result.MissingDatatypes = DedupSignatures(unmatched)
	result.UnmatchedIDs = DedupSubmitterIDs(unmatched)
	metrics.ProjectsReconciled.Inc()
	slog.Info("项目对账完成", "project_id", projectID,
		"missing_datasets", len(result.MissingDatasets),
		"wrong_count_datasets", len(result.WrongCountDatasets),
		"missing_datatypes", len(result.MissingDatatypes))
	return result
}
