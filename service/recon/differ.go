/*
 * @module service/recon/differ
 * @description 比对引擎,对单个数据集计算三类分歧:目标侧是否存在、样本数是否一致、
 *              双方各自独有的样本ID集合
 * @architecture 分层架构 - 纯函数比对层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 源侧ID集合构建(含项目级ID归一化) -> 集合差计算 -> 数量比较
 * @rules 目标侧返回空集即视为数据集缺失,"不存在"与"存在但为空"按上游约定不可区分;
 *        数量相等时仍记录双向差集;目标侧多于源侧属异常观察,仍计为数量不一致
 * @dependencies sort
 * @refs service/recon/engine.go
 */

package recon

import (
	"sort"
)

// DiffResult 单数据集比对结果
type DiffResult struct {
	Missing      bool     // 目标侧不存在该数据集
	WrongCount   bool     // 样本数不一致
	Anomaly      bool     // 目标侧样本数多于源侧
	OnlyInSource []string // 仅源侧存在的样本ID
	OnlyInTarget []string // 仅目标侧存在的样本ID
	SourceCount  int
	TargetCount  int
}

// DiffDataset 比较数据集成员与目标清单返回的样本ID列表
// 纯函数:给定两个ID集合,输出固定;结果中的ID列表排序后返回以保证确定性
func DiffDataset(ds *Dataset, targetIDs []string, ov ProjectOverride) DiffResult {
	sourceSet := make(map[string]struct{}, len(ds.Files))
	for _, f := range ds.Files {
		sourceSet[ov.NormalizeID(f.SubmitterID)] = struct{}{}
	}
	targetSet := make(map[string]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		targetSet[id] = struct{}{}
	}

	result := DiffResult{
		Missing:      len(targetSet) == 0,
		SourceCount:  len(sourceSet),
		TargetCount:  len(targetSet),
		OnlyInSource: []string{},
		OnlyInTarget: []string{},
	}

	for id := range sourceSet {
		if _, ok := targetSet[id]; !ok {
			result.OnlyInSource = append(result.OnlyInSource, id)
		}
	}
	for id := range targetSet {
		if _, ok := sourceSet[id]; !ok {
			result.OnlyInTarget = append(result.OnlyInTarget, id)
		}
	}
	sort.Strings(result.OnlyInSource)
	sort.Strings(result.OnlyInTarget)

	switch {
	case result.TargetCount == result.SourceCount:
		// 数量一致不标记,但双向差集仍然保留(可能存在ID互换)
	case result.TargetCount < result.SourceCount:
		result.WrongCount = true
	default:
		// 目标侧比源侧多,属异常观察,同样计为数量不一致
		result.WrongCount = true
		result.Anomaly = true
	}
	return result
}
