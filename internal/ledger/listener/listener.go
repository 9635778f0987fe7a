package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/forgedesk/inventory-service/internal/ledger"
	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/pkg/broker"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// LedgerListener consumes stock movement events published by shop floor
// integrations and applies them as ledger transactions.
type LedgerListener struct {
	consumer *broker.Consumer
	uc       ledger.UseCase
	logger   logger.ZapLogger
}

func NewLedgerListener(consumer *broker.Consumer, uc ledger.UseCase, logger logger.ZapLogger) *LedgerListener {
	return &LedgerListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *LedgerListener) Start(ctx context.Context) {
	l.logger.Info("Starting Ledger Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Ledger Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type StockMovementEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   StockMovementPayload `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

type StockMovementPayload struct {
	Reference  string              `json:"reference"`
	Notes      string              `json:"notes"`
	RecordedBy string              `json:"recorded_by"`
	Lines      []StockMovementLine `json:"lines"`
}

type StockMovementLine struct {
	SKU            string `json:"sku"`
	QuantityChange int64  `json:"quantity_change"`
	Note           string `json:"note"`
}

func (l *LedgerListener) processMessage(ctx context.Context, value []byte) {
	var event StockMovementEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "StockMovement" {
		return
	}

	l.logger.Info("Processing StockMovement event",
		zap.String("event_id", event.EventID),
		zap.String("reference", event.Payload.Reference))

	input := &dto.RecordTransactionInput{
		Reference:  event.Payload.Reference,
		Notes:      event.Payload.Notes,
		RecordedBy: event.Payload.RecordedBy,
	}
	if input.RecordedBy == "" {
		input.RecordedBy = "system"
	}
	for _, line := range event.Payload.Lines {
		input.Lines = append(input.Lines, dto.TransactionLineInput{
			Identifier:     line.SKU,
			QuantityChange: line.QuantityChange,
			Note:           line.Note,
		})
	}

	if _, err := l.uc.RecordTransaction(ctx, input); err != nil {
		l.logger.Error("Failed to apply stock movement event",
			zap.String("event_id", event.EventID),
			zap.String("reference", event.Payload.Reference),
			zap.Error(err),
		)
	}
}
