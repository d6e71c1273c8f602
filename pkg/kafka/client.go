// Package kafka 发布对话轮次完成事件，供看板侧汇总使用。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"painpoint-advisor/internal/config"
	"painpoint-advisor/pkg/log"
)

// TurnEvent 描述一次已持久化的助手回复。
type TurnEvent struct {
	ConversationID       string    `json:"conversationId"`
	MessageID            string    `json:"messageId"`
	Provider             string    `json:"provider"`
	Streamed             bool      `json:"streamed"`
	ReferencedPainPoints []int     `json:"referencedPainPoints"`
	CompletedAt          time.Time `json:"completedAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TurnProducer 将 TurnEvent 写入 Kafka。未配置 brokers 时所有操作都是空操作。
type TurnProducer struct {
	writer messageWriter
}

// NewTurnProducer 根据配置创建生产者。
func NewTurnProducer(cfg config.KafkaConfig) *TurnProducer {
	brokers := splitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		log.Info("Kafka brokers not configured, turn events disabled")
		return &TurnProducer{}
	}
	log.Infof("Kafka 生产者初始化成功, topic=%s", cfg.Topic)
	return &TurnProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{}, // 同一对话的事件落在同一分区
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// PublishTurn 发送一条对话轮次事件，以对话 ID 作为消息 key。
func (p *TurnProducer) PublishTurn(ctx context.Context, event TurnEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal turn event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ConversationID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("failed to write turn event: %w", err)
	}
	return nil
}

// Close 关闭底层 writer。
func (p *TurnProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func splitBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
