/*
 * @module service/catalog/catalog
 * @description 数据集形状目录,定义每个数据集的四元组匹配条件(数据类型/工作流/平台/实验策略)
 * @architecture 静态配置 - 进程启动时加载,运行期不可变
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 目录加载 -> 分类器按目录顺序匹配
 * @rules 空字符串字段为通配符,匹配任意值;目录顺序即匹配优先级,不可随意调整
 * @dependencies 无
 * @refs service/recon/classifier.go
 */

package catalog

// ShapeDefinition 数据集形状定义
// 四个匹配字段中,空字符串表示通配,匹配任意取值(包括空值)
type ShapeDefinition struct {
	Name                 string `json:"name"`
	DataType             string `json:"data_type"`
	WorkflowType         string `json:"workflow_type"`
	Platform             string `json:"platform"`
	ExperimentalStrategy string `json:"experimental_strategy"`
}

// shapes 目录内容,顺序即分类优先级
// 与目标hub的数据集构建参照保持一致
var shapes = []ShapeDefinition{
	{Name: "star_counts", DataType: "Gene Expression Quantification", WorkflowType: "STAR - Counts", ExperimentalStrategy: "RNA-Seq"},
	{Name: "mirna", DataType: "miRNA Expression Quantification", WorkflowType: "BCGSC miRNA Profiling", ExperimentalStrategy: "miRNA-Seq"},
	{Name: "segment_cnv_ascat-ngs", DataType: "Copy Number Segment", WorkflowType: "AscatNGS", ExperimentalStrategy: "WGS"},
	{Name: "masked_cnv", DataType: "Masked Copy Number Segment", WorkflowType: "DNAcopy"},
	{Name: "gene-level_ascat2", DataType: "Gene Level Copy Number", WorkflowType: "ASCAT2"},
	{Name: "gene-level_ascat3", DataType: "Gene Level Copy Number", WorkflowType: "ASCAT3"},
	{Name: "gene-level_ascat-ngs", DataType: "Gene Level Copy Number", WorkflowType: "AscatNGS"},
	{Name: "gene-level_absolute", DataType: "Gene Level Copy Number", WorkflowType: "ABSOLUTE LiftOver"},
	{Name: "allele_cnv_ascat2", DataType: "Allele-specific Copy Number Segment", WorkflowType: "ASCAT2"},
	{Name: "allele_cnv_ascat3", DataType: "Allele-specific Copy Number Segment", WorkflowType: "ASCAT3"},
	{Name: "somaticmutation_wxs", DataType: "Masked Somatic Mutation", ExperimentalStrategy: "WXS"},
	{Name: "somaticmutation_targeted", DataType: "Masked Somatic Mutation", ExperimentalStrategy: "Targeted Sequencing"},
	{Name: "methylation27", DataType: "Methylation Beta Value", Platform: "Illumina Human Methylation 27"},
	{Name: "methylation450", DataType: "Methylation Beta Value", Platform: "Illumina Human Methylation 450"},
	{Name: "methylation_epic", DataType: "Methylation Beta Value", Platform: "Illumina Methylation Epic"},
	{Name: "methylation_epic_v2", DataType: "Methylation Beta Value", Platform: "Illumina Methylation Epic v2"},
	{Name: "protein", DataType: "Protein Expression Quantification", ExperimentalStrategy: "Reverse Phase Protein Array"},
}

// All 返回目录全部形状,顺序稳定
// 返回副本,调用方无法修改目录内容
func All() []ShapeDefinition {
	out := make([]ShapeDefinition, len(shapes))
	copy(out, shapes)
	return out
}

// Len 返回目录形状数量
func Len() int {
	return len(shapes)
}
