/*
 * @module service/recon/builder
 * @description 数据集构建器,创建每个形状的累加器、剪除空数据集并对未匹配记录去重生成签名
 * @architecture 分层架构 - 聚合层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 按目录创建累加器 -> 分类填充 -> 剪除空数据集 -> 未匹配记录去重
 * @rules 零成员的形状不是该项目的真实数据集,剪除后不参与任何后续比对;
 *        去重仅基于四个元数据字段,去重操作幂等
 * @dependencies recon-service/service/catalog
 * @refs service/recon/engine.go
 */

package recon

import (
	"recon-service/service/catalog"
)

// NewDatasets 按形状目录为项目创建数据集累加器
func NewDatasets(projectID string, shapes []catalog.ShapeDefinition) []*Dataset {
	datasets := make([]*Dataset, 0, len(shapes))
	for _, shape := range shapes {
		datasets = append(datasets, &Dataset{
			Shape:     shape,
			ProjectID: projectID,
		})
	}
	return datasets
}

// Prune 剪除无成员的数据集,保持原有顺序
func Prune(datasets []*Dataset) []*Dataset {
	pruned := make([]*Dataset, 0, len(datasets))
	for _, ds := range datasets {
		if len(ds.Files) > 0 {
			pruned = append(pruned, ds)
		}
	}
	return pruned
}

// DedupSignatures 按元数据键去重并生成签名列表,保持首次出现顺序
func DedupSignatures(files []FileRecord) []string {
	seen := make(map[MetadataKey]struct{}, len(files))
	signatures := make([]string, 0, len(files))
	for _, f := range files {
		key := f.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		signatures = append(signatures, f.Signature())
	}
	return signatures
}

// DedupSubmitterIDs 样本ID去重,保持首次出现顺序
func DedupSubmitterIDs(files []FileRecord) []string {
	seen := make(map[string]struct{}, len(files))
	ids := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f.SubmitterID]; ok {
			continue
		}
		seen[f.SubmitterID] = struct{}{}
		ids = append(ids, f.SubmitterID)
	}
	return ids
}
