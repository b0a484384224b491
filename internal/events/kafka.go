package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"storemanager/internal/pkg/logger"
)

const publishTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica eventos de venda em um tópico Kafka, com o id da venda como chave.
type KafkaPublisher struct {
	writer messageWriter
	logger logger.Logger
}

// NewKafkaPublisher cria o writer para os brokers e o tópico informados.
func NewKafkaPublisher(brokers []string, topic string, log logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	if zl, ok := log.(*logger.ZapLogger); ok {
		writer.ErrorLogger = kafka.LoggerFunc(zl.Zap().Sugar().Errorf)
	}
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(w messageWriter, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: log}
}

// Publish serializa o evento em JSON e o grava no tópico.
func (p *KafkaPublisher) Publish(ctx context.Context, event SaleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento %s: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.SaleID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("falha ao publicar evento %s: %w", event.Type, err)
	}

	p.logger.Debug("Evento publicado.", map[string]interface{}{
		"event_id": event.EventID,
		"type":     event.Type,
		"sale_id":  event.SaleID,
	})
	return nil
}

// Close descarrega e fecha o writer.
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
