/*
 * @module service/recon/overrides
 * @description 项目级特殊处理规则表,归一化器与比对引擎按项目ID查询,核心算法不含具名项目分支
 * @architecture 策略表模式 - 按项目ID查表
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 内置规则加载 -> 脚本规则合并 -> 运行期只读查询
 * @rules 未登记的项目返回零值规则,即全部走通用路径
 * @dependencies 无
 * @refs service/recon/normalizer.go, service/recon/differ.go
 */

package recon

// ProjectOverride 项目级特殊处理规则
type ProjectOverride struct {
	// UseCaseSubmitterID 为true时,文件-病例关联结构不同,
	// 使用病例级submitter_id代替样本级submitter_id
	UseCaseSubmitterID bool
	// TrimIDSuffix 比对前从样本ID末尾去除的字符数,用于带后缀约定的队列
	TrimIDSuffix int
}

// builtinOverrides 内置规则
// CPTAC-3: 文件元数据中样本与病例的挂接方式与其他项目不同
// BEATAML1.0-COHORT: 样本ID带单字符后缀约定,比对前去除
var builtinOverrides = map[string]ProjectOverride{
	"CPTAC-3":           {UseCaseSubmitterID: true},
	"BEATAML1.0-COHORT": {TrimIDSuffix: 1},
}

// OverrideTable 项目规则表
type OverrideTable struct {
	rules map[string]ProjectOverride
}

// NewOverrideTable 创建规则表,包含内置规则
func NewOverrideTable() *OverrideTable {
	rules := make(map[string]ProjectOverride, len(builtinOverrides))
	for k, v := range builtinOverrides {
		rules[k] = v
	}
	return &OverrideTable{rules: rules}
}

// Merge 合并外部规则,同项目ID覆盖已有条目
func (t *OverrideTable) Merge(extra map[string]ProjectOverride) {
	for k, v := range extra {
		t.rules[k] = v
	}
}

// For 查询项目的特殊处理规则,未登记项目返回零值
func (t *OverrideTable) For(projectID string) ProjectOverride {
	return t.rules[projectID]
}

// NormalizeID 按规则归一化样本ID(目前仅后缀去除)
func (o ProjectOverride) NormalizeID(id string) string {
	if o.TrimIDSuffix > 0 && len(id) > o.TrimIDSuffix {
		return id[:len(id)-o.TrimIDSuffix]
	}
	return id
}
