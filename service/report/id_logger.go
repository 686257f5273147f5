/*
 * @module service/report/id_logger
 * @description 样本ID分歧日志输出,按项目与数据集组织目标侧缺失ID与仅目标侧存在的ID
 * @architecture 分层架构 - 序列化输出层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 项目结果 -> 保留键组织 -> JSON文档写出 + slog结构化记录
 * @rules 保留键not_in_datasets存放项目级未匹配样本ID,not_in_target存放各数据集仅目标侧存在的ID
 * @dependencies encoding/json, log/slog
 * @refs service/recon/types.go, main.go
 */

package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"recon-service/service/recon"
)

// 保留键,不得与数据集名冲突
const (
	KeyNotInDatasets = "not_in_datasets"
	KeyNotInTarget   = "not_in_target"
)

// BuildIDLog 按保留键约定组织样本ID分歧结构
// 结构: 项目ID -> {数据集名: 目标侧缺失ID列表, not_in_datasets: [...], not_in_target: {数据集名: [...]}}
func BuildIDLog(results []recon.ProjectResult) map[string]interface{} {
	doc := make(map[string]interface{}, len(results))
	for _, r := range results {
		if r.Err != nil {
			doc[r.ProjectID] = map[string]interface{}{"error": r.Err.Error()}
			continue
		}
		entry := make(map[string]interface{}, len(r.MissingIDs)+2)
		for dataset, ids := range r.MissingIDs {
			entry[dataset] = ids
		}
		entry[KeyNotInDatasets] = r.UnmatchedIDs
		entry[KeyNotInTarget] = r.TargetOnlyIDs
		doc[r.ProjectID] = entry
	}
	return doc
}

// WriteIDLog 写出样本ID分歧JSON文档,并对每个项目记录一条结构化日志
func WriteIDLog(path string, results []recon.ProjectResult) error {
	doc := BuildIDLog(results)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化样本ID日志失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写出样本ID日志失败: %w", err)
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		slog.Info("样本ID分歧",
			"project_id", r.ProjectID,
			"missing_ids", r.MissingIDs,
			"not_in_datasets", r.UnmatchedIDs,
			"not_in_target", r.TargetOnlyIDs)
	}
	return nil
}
