// Package events publica o ciclo de vida das vendas para consumidores externos.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storemanager/internal/domain"
)

// Tipos de evento de venda.
const (
	SaleCreated = "sale.created"
	SaleUpdated = "sale.updated"
	SaleDeleted = "sale.deleted"
)

// SaleEvent é a mensagem publicada após uma operação de venda confirmada.
type SaleEvent struct {
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	SaleID     int64             `json:"sale_id"`
	Lines      []domain.SaleLine `json:"lines"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewSaleEvent monta um evento com id e horário próprios.
func NewSaleEvent(eventType string, saleID int64, lines []domain.SaleLine) SaleEvent {
	return SaleEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		SaleID:     saleID,
		Lines:      lines,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher entrega eventos de venda.
type Publisher interface {
	Publish(ctx context.Context, event SaleEvent) error
	Close() error
}

// NoopPublisher descarta os eventos. Usado quando KAFKA_BROKERS não está definido.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, SaleEvent) error { return nil }
func (NoopPublisher) Close() error                            { return nil }
