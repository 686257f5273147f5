/*
 * @module service/event/divergence_publisher
 * @description 分歧事件发布器,对账发现分歧的项目通过Kafka通知下游数据集更新流程
 * @architecture 适配器模式 - 封装Kafka生产者
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 项目结果 -> 分歧判定 -> 事件序列化 -> Kafka写入
 * @rules 仅存在分歧的项目产生事件;发布失败记录日志,不影响对账结果落库
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/reconrun/service.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"recon-service/service/recon"
)

// DefaultTopic 分歧事件默认主题
const DefaultTopic = "recon-divergence"

// DivergenceEvent 项目分歧事件
type DivergenceEvent struct {
	RunID              string    `json:"run_id"`
	ProjectID          string    `json:"project_id"`
	MissingDatasets    []string  `json:"missing_datasets"`
	WrongCountDatasets []string  `json:"wrong_count_datasets"`
	MissingDatatypes   []string  `json:"missing_datatypes"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// DivergencePublisher 分歧事件发布器
type DivergencePublisher struct {
	writer *kafka.Writer
}

// NewDivergencePublisher 创建分歧事件发布器
func NewDivergencePublisher(brokers []string, topic string) *DivergencePublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &DivergencePublisher{writer: writer}
}

// PublishResult 发布单项目的分歧事件,无分歧或对账中止的项目不产生事件
func (p *DivergencePublisher) PublishResult(ctx context.Context, runID string, result recon.ProjectResult) error {
	if result.Err != nil {
		return nil
	}
	if len(result.MissingDatasets) == 0 && len(result.WrongCountDatasets) == 0 && len(result.MissingDatatypes) == 0 {
		return nil
	}

	evt := DivergenceEvent{
		RunID:              runID,
		ProjectID:          result.ProjectID,
		MissingDatasets:    result.MissingDatasets,
		WrongCountDatasets: result.WrongCountDatasets,
		MissingDatatypes:   result.MissingDatatypes,
		OccurredAt:         time.Now(),
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化分歧事件失败: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(result.ProjectID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("发布分歧事件失败: %w", err)
	}
	slog.Info("分歧事件已发布", "run_id", runID, "project_id", result.ProjectID)
	return nil
}

// Close 关闭Kafka生产者
func (p *DivergencePublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
