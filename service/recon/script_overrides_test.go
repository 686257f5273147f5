package recon

import (
	"os"
	"path/filepath"
	"testing"
)

const overrideScript = `package main

func Overrides() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		"NEW-COHORT": {
			"use_case_submitter_id": true,
			"trim_id_suffix":        2,
		},
	}
}
`

func TestLoadScriptOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.go")
	if err := os.WriteFile(path, []byte(overrideScript), 0644); err != nil {
		t.Fatal(err)
	}

	overrides, err := LoadScriptOverrides(path)
	if err != nil {
		t.Fatalf("LoadScriptOverrides() error = %v", err)
	}
	ov, ok := overrides["NEW-COHORT"]
	if !ok {
		t.Fatal("脚本定义的项目规则未加载")
	}
	if !ov.UseCaseSubmitterID || ov.TrimIDSuffix != 2 {
		t.Errorf("规则字段转换错误: %+v", ov)
	}
}

func TestLoadScriptOverridesErrors(t *testing.T) {
	t.Run("文件不存在", func(t *testing.T) {
		if _, err := LoadScriptOverrides(filepath.Join(t.TempDir(), "missing.go")); err == nil {
			t.Error("缺失文件应返回错误")
		}
	})

	t.Run("脚本语法错误", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.go")
		if err := os.WriteFile(path, []byte("package main\nfunc {"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadScriptOverrides(path); err == nil {
			t.Error("语法错误的脚本应返回错误")
		}
	})

	t.Run("返回类型错误", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wrongtype.go")
		src := "package main\n\nfunc Overrides() string { return \"x\" }\n"
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadScriptOverrides(path); err == nil {
			t.Error("返回类型不符的脚本应返回错误")
		}
	})
}
