/*
 * @module service/recon/script_overrides
 * @description 脚本定义的项目规则加载器,通过yaegi解释执行Go脚本,
 *              在不重新发布的前提下为新队列补充特殊处理规则
 * @architecture 插件模式 - 解释执行外部脚本
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 读取脚本文件 -> 解释执行 -> 调用Overrides() -> 转换为规则表条目
 * @rules 脚本必须为package main并提供 func Overrides() map[string]map[string]interface{};
 *        内层键: use_case_submitter_id(bool), trim_id_suffix(int)
 * @dependencies github.com/traefik/yaegi, github.com/spf13/cast
 * @refs service/recon/overrides.go, service/init.go
 */

package recon

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// LoadScriptOverrides 解释执行规则脚本并返回项目规则集
func LoadScriptOverrides(path string) (map[string]ProjectOverride, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取规则脚本失败: %w", err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载标准库失败: %w", err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, fmt.Errorf("规则脚本编译失败: %w", err)
	}

	v, err := i.Eval("main.Overrides()")
	if err != nil {
		return nil, fmt.Errorf("调用Overrides()失败: %w", err)
	}

	raw, ok := v.Interface().(map[string]map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("规则脚本返回类型错误: 期望 map[string]map[string]interface{}")
	}

	overrides := make(map[string]ProjectOverride, len(raw))
	for projectID, fields := range raw {
		overrides[projectID] = ProjectOverride{
			UseCaseSubmitterID: cast.ToBool(fields["use_case_submitter_id"]),
			TrimIDSuffix:       cast.ToInt(fields["trim_id_suffix"]),
		}
	}
	return overrides, nil
}
