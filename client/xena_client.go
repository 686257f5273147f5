/*
 * @module client/xena_client
 * @description Xena目标清单HTTP客户端,按(项目,数据集名)查询数据集的成员样本ID列表
 * @architecture 适配器模式 - 封装Xena hub查询接口,实现引擎的TargetInventory接口
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 拼接数据集ID -> POST查询文本 -> 解析样本ID数组
 * @rules 空数组是合法应答,表示数据集不存在(与"存在但为空"按上游约定不可区分);
 *        不重试;可选读穿缓存仅在服务模式下挂接
 * @dependencies net/http, encoding/json
 * @refs service/recon/engine.go, service/cache/redis_cache.go
 */

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultXenaUrl 目标hub默认地址
const DefaultXenaUrl = "https://gdcbetarelease.xenahubs.net"

// datasetSamplesQuery 查询数据集全部样本ID的hub查询文本,%s为数据集ID占位
const datasetSamplesQuery = `(map :value (query {:select [:value] :from [:dataset :field :code] :where [:and [:= :dataset.name %q] [:= :field.name "sampleID"] [:= :dataset.id :field.dataset_id] [:= :field.id :code.field_id]]}))`

// SampleCache 样本ID查询缓存接口,服务模式下由Redis实现
type SampleCache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, samples []string)
}

// XenaClient Xena目标清单客户端
type XenaClient struct {
	hubURL     string
	httpClient *http.Client
	cache      SampleCache
}

// NewXenaClient 创建Xena客户端,地址可由XENA_HUB_URL环境变量覆盖
func NewXenaClient() *XenaClient {
	hubURL := DefaultXenaUrl
	if envUrl := os.Getenv("XENA_HUB_URL"); envUrl != "" {
		hubURL = envUrl
	}
	return &XenaClient{
		hubURL: hubURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetBaseURL 设置hub地址(用于测试)
func (c *XenaClient) SetBaseURL(url string) {
	c.hubURL = url
}

// SetCache 挂接查询缓存
func (c *XenaClient) SetCache(cache SampleCache) {
	c.cache = cache
}

// DatasetSamples 查询数据集的成员样本ID列表
// 数据集ID按 <projectID>.<datasetName>.tsv 约定拼接
func (c *XenaClient) DatasetSamples(ctx context.Context, projectID, datasetName string) ([]string, error) {
	datasetID := strings.Join([]string{projectID, datasetName, "tsv"}, ".")

	if c.cache != nil {
		if samples, ok := c.cache.Get(ctx, datasetID); ok {
			slog.Debug("样本查询命中缓存", "dataset_id", datasetID)
			return samples, nil
		}
	}

	query := fmt.Sprintf(datasetSamplesQuery, datasetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hubURL+"/data", strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("hub查询失败: 状态码=%d, 响应=%s", resp.StatusCode, string(body))
	}

	var samples []string
	if err = json.NewDecoder(resp.Body).Decode(&samples); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if samples == nil {
		samples = []string{}
	}

	if c.cache != nil {
		c.cache.Set(ctx, datasetID, samples)
	}
	return samples, nil
}
