/*
 * @module client/gdc_client
 * @description GDC参考清单HTTP客户端,按项目拉取项目列表与开放访问文件的元数据
 * @architecture 适配器模式 - 封装GDC REST API,实现引擎的ReferenceInventory接口
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 构造过滤条件 -> POST查询 -> 剥离data.hits -> 原始记录列表
 * @rules 不重试;非2xx响应视为传输错误;返回记录中的字段可能缺失,由归一化器处理
 * @dependencies net/http, encoding/json, github.com/spf13/cast
 * @refs service/recon/engine.go, service/recon/normalizer.go
 */

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DefaultGDCUrl GDC API默认地址
const DefaultGDCUrl = "https://api.gdc.cancer.gov"

// projectFields 项目查询请求的字段集
var projectFields = []string{"project_id", "released"}

// fileFields 文件查询请求的字段集
var fileFields = []string{
	"file_id",
	"data_type",
	"analysis.workflow_type",
	"platform",
	"experimental_strategy",
	"cases.samples.submitter_id",
	"cases.samples.tissue_type",
	"cases.submitter_id",
}

// GDCClient GDC参考清单客户端
type GDCClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGDCClient 创建GDC客户端,地址可由GDC_URL环境变量覆盖
func NewGDCClient() *GDCClient {
	baseURL := DefaultGDCUrl
	if envUrl := os.Getenv("GDC_URL"); envUrl != "" {
		baseURL = envUrl
	}
	return &GDCClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetBaseURL 设置GDC地址(用于测试)
func (c *GDCClient) SetBaseURL(url string) {
	c.baseURL = url
}

// gdcResponse GDC查询响应的外层结构,全部元数据位于data.hits
type gdcResponse struct {
	Data struct {
		Hits []map[string]interface{} `json:"hits"`
	} `json:"data"`
}

// ListProjects 获取GDC全部项目ID
func (c *GDCClient) ListProjects(ctx context.Context) ([]string, error) {
	params := map[string]interface{}{
		"filters": "{}",
		"fields":  strings.Join(projectFields, ","),
		"format":  "json",
		"size":    "100",
	}
	hits, err := c.postQuery(ctx, "/projects", params)
	if err != nil {
		return nil, err
	}

	projects := make([]string, 0, len(hits))
	for _, hit := range hits {
		if id := cast.ToString(hit["project_id"]); id != "" {
			projects = append(projects, id)
		}
	}
	return projects, nil
}

// ListFiles 获取项目下全部开放访问文件的元数据原始记录
func (c *GDCClient) ListFiles(ctx context.Context, projectID string) ([]map[string]interface{}, error) {
	filters := map[string]interface{}{
		"op": "and",
		"content": []map[string]interface{}{
			{
				"op": "in",
				"content": map[string]interface{}{
					"field": "cases.project.project_id",
					"value": []string{projectID},
				},
			},
			{
				"op": "in",
				"content": map[string]interface{}{
					"field": "access",
					"value": []string{"open"},
				},
			},
		},
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("序列化过滤条件失败: %w", err)
	}

	params := map[string]interface{}{
		"filters": string(filtersJSON),
		"fields":  strings.Join(fileFields, ","),
		"format":  "json",
		"size":    "100000",
	}
	return c.postQuery(ctx, "/files", params)
}

// postQuery 执行POST查询并剥离data.hits
func (c *GDCClient) postQuery(ctx context.Context, path string, params map[string]interface{}) ([]map[string]interface{}, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("序列化请求参数失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GDC查询失败: 状态码=%d", resp.StatusCode)
	}

	var gdcResp gdcResponse
	if err = json.NewDecoder(resp.Body).Decode(&gdcResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return gdcResp.Data.Hits, nil
}
