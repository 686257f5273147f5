/*
 * @module service/recon/classifier
 * @description 分类器,将归一化文件记录按目录顺序首次匹配到数据集,四字段全部匹配才命中
 * @architecture 分层架构 - 规则匹配层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 记录输入 -> 按目录顺序逐形状匹配 -> 命中追加成员/未命中进入未匹配列表
 * @rules 首次匹配即停止;两个条件相同的形状中靠前者总是吸收记录;每条记录恰好路由到一个去向
 * @dependencies recon-service/service/catalog
 * @refs service/recon/engine.go
 */

package recon

import (
	"strings"

	"recon-service/service/catalog"
)

// fieldMatches 单字段匹配:形状字段为空串时通配,否则大小写不敏感相等
func fieldMatches(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}

// ShapeMatches 形状的四个字段是否全部匹配记录
func ShapeMatches(shape catalog.ShapeDefinition, rec FileRecord) bool {
	return fieldMatches(shape.DataType, rec.DataType) &&
		fieldMatches(shape.WorkflowType, rec.WorkflowType) &&
		fieldMatches(shape.Platform, rec.Platform) &&
		fieldMatches(shape.ExperimentalStrategy, rec.ExperimentalStrategy)
}

// Classify 按目录顺序将记录分类到首个匹配的数据集
// 返回false表示无任何形状匹配,记录应进入未匹配列表
func Classify(rec FileRecord, datasets []*Dataset) bool {
	for _, ds := range datasets {
		if ShapeMatches(ds.Shape, rec) {
			ds.Files = append(ds.Files, rec)
			return true
		}
	}
	return false
}
