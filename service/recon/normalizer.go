/*
 * @module service/recon/normalizer
 * @description 记录归一化器,将参考清单返回的原始文件记录转换为规范的FileRecord,
 *              应用排除规则、肿瘤样本筛选与项目级ID提取规则
 * @architecture 分层架构 - 纯函数转换层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 原始记录 -> 排除规则 -> 样本ID解析 -> FileRecord或丢弃
 * @rules 缺少样本结构或解析不到样本ID的记录直接丢弃,不抛错;丢弃是有意的过滤而非失败
 * @dependencies github.com/spf13/cast
 * @refs service/recon/engine.go, client/gdc_client.go
 */

package recon

import (
	"github.com/spf13/cast"
)

// unusedDataTypes 不参与数据集构建的数据类型
var unusedDataTypes = map[string]struct{}{
	"Slide Image":                       {},
	"Biospecimen Supplement":            {},
	"Clinical Supplement":               {},
	"Masked Intensities":                {},
	"Pathology Report":                  {},
	"Isoform Expression Quantification": {},
	"Tissue Microarray Image":           {},
}

// unusedStrategies 不参与数据集构建的实验策略
var unusedStrategies = map[string]struct{}{
	"scRNA-Seq": {},
}

// tumorDataTypes 仅统计肿瘤样本的数据类型
var tumorDataTypes = map[string]struct{}{
	"Copy Number Segment":                 {},
	"Masked Copy Number Segment":          {},
	"Gene Level Copy Number":              {},
	"Masked Somatic Mutation":             {},
	"Allele-specific Copy Number Segment": {},
}

// Normalizer 记录归一化器
type Normalizer struct {
	overrides *OverrideTable
}

// NewNormalizer 创建归一化器
func NewNormalizer(overrides *OverrideTable) *Normalizer {
	return &Normalizer{overrides: overrides}
}

// Normalize 归一化一条原始文件记录
// 返回false表示记录被排除规则或样本ID解析规则丢弃
func (n *Normalizer) Normalize(raw map[string]interface{}, projectID string) (FileRecord, bool) {
	rec := FileRecord{
		FileID:               cast.ToString(raw["file_id"]),
		DataType:             cast.ToString(raw["data_type"]),
		Platform:             cast.ToString(raw["platform"]),
		ExperimentalStrategy: cast.ToString(raw["experimental_strategy"]),
		ProjectID:            projectID,
	}
	if analysis := cast.ToStringMap(raw["analysis"]); analysis != nil {
		rec.WorkflowType = cast.ToString(analysis["workflow_type"])
	}

	if n.excluded(rec) {
		return FileRecord{}, false
	}

	rec.SubmitterID = n.resolveSubmitterID(raw, rec.DataType, projectID)
	if rec.SubmitterID == "" {
		return FileRecord{}, false
	}
	return rec, true
}

// excluded 应用排除规则
func (n *Normalizer) excluded(rec FileRecord) bool {
	if _, ok := unusedStrategies[rec.ExperimentalStrategy]; ok {
		return true
	}
	if _, ok := unusedDataTypes[rec.DataType]; ok {
		return true
	}
	// DNAcopy产出的拷贝数分段不进入目标hub
	if rec.DataType == "Copy Number Segment" && rec.WorkflowType == "DNAcopy" {
		return true
	}
	return false
}

// resolveSubmitterID 解析样本ID
// 肿瘤限定类型扫描样本列表中首个tissue_type为Tumor的样本;
// 其余类型取首个样本;按项目规则可改用病例级submitter_id
func (n *Normalizer) resolveSubmitterID(raw map[string]interface{}, dataType, projectID string) string {
	cases := cast.ToSlice(raw["cases"])
	if len(cases) == 0 {
		return ""
	}
	firstCase := cast.ToStringMap(cases[0])
	if firstCase == nil {
		return ""
	}
	samples := cast.ToSlice(firstCase["samples"])

	_, tumorOnly := tumorDataTypes[dataType]
	ov := n.overrides.For(projectID)

	if ov.UseCaseSubmitterID {
		// 病例级ID,肿瘤限定类型仍要求样本列表中存在肿瘤样本
		if tumorOnly && !hasTumorSample(samples) {
			return ""
		}
		return cast.ToString(firstCase["submitter_id"])
	}

	if tumorOnly {
		for _, s := range samples {
			sample := cast.ToStringMap(s)
			if cast.ToString(sample["tissue_type"]) == "Tumor" {
				return cast.ToString(sample["submitter_id"])
			}
		}
		return ""
	}

	if len(samples) == 0 {
		return ""
	}
	return cast.ToString(cast.ToStringMap(samples[0])["submitter_id"])
}

// hasTumorSample 样本列表中是否存在肿瘤样本
func hasTumorSample(samples []interface{}) bool {
	for _, s := range samples {
		if cast.ToString(cast.ToStringMap(s)["tissue_type"]) == "Tumor" {
			return true
		}
	}
	return false
}
