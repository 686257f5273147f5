/*
 * @module service/recon/types
 * @description 对账引擎核心数据结构:归一化文件记录、数据集累加器、项目对账结果
 * @architecture 分层架构 - 领域模型
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 文件记录归一化 -> 分类进入数据集 -> 比对生成项目结果
 * @rules 文件记录去重仅基于四个元数据字段,不含样本ID
 * @dependencies recon-service/service/catalog
 * @refs service/recon/engine.go
 */

package recon

import (
	"strings"

	"recon-service/service/catalog"
)

// FileRecord 归一化后的文件记录,样本ID保证非空
type FileRecord struct {
	FileID               string
	DataType             string
	WorkflowType         string
	Platform             string
	ExperimentalStrategy string
	SubmitterID          string
	ProjectID            string
}

// MetadataKey 仅含四个匹配元数据字段的值类型,用于缺失数据类型去重
type MetadataKey struct {
	DataType             string
	WorkflowType         string
	Platform             string
	ExperimentalStrategy string
}

// Key 返回记录的元数据去重键
func (r FileRecord) Key() MetadataKey {
	return MetadataKey{
		DataType:             r.DataType,
		WorkflowType:         r.WorkflowType,
		Platform:             r.Platform,
		ExperimentalStrategy: r.ExperimentalStrategy,
	}
}

// Signature 按固定顺序(类型/工作流/平台/策略)将非空元数据字段以 "/" 连接
func (r FileRecord) Signature() string {
	fields := []string{r.DataType, r.WorkflowType, r.Platform, r.ExperimentalStrategy}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "/")
}

// Dataset 某项目下一个形状的文件集合,分类阶段追加成员
type Dataset struct {
	Shape     catalog.ShapeDefinition
	ProjectID string
	Files     []FileRecord
}

// ProjectResult 单项目对账结果
// 由比对引擎逐步填充,项目处理结束后不再修改
type ProjectResult struct {
	ProjectID          string
	MissingDatasets    []string            // 目标侧不存在的数据集名
	WrongCountDatasets []string            // 样本数不一致的数据集名
	MissingDatatypes   []string            // 未匹配记录去重后的元数据签名
	MissingIDs         map[string][]string // 数据集 -> 目标侧缺失的样本ID
	TargetOnlyIDs      map[string][]string // 数据集 -> 仅目标侧存在的样本ID
	UnmatchedIDs       []string            // 未匹配任何数据集的样本ID(去重)
	Err                error               // 非nil表示该项目对账中止
}

// NewProjectResult 创建空的项目对账结果
func NewProjectResult(projectID string) ProjectResult {
	return ProjectResult{
		ProjectID:     projectID,
		MissingIDs:    make(map[string][]string),
		TargetOnlyIDs: make(map[string][]string),
	}
}
