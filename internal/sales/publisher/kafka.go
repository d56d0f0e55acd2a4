package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/shopspring/decimal"
)

const EventSaleCompleted = "sale.completed"

// Producer is satisfied by *broker.KafkaProducer.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

type SaleCompletedEvent struct {
	EventType   string          `json:"event_type"`
	SaleID      string          `json:"sale_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []SaleEventItem `json:"items"`
	Timestamp   time.Time       `json:"timestamp"`
}

type SaleEventItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

// KafkaPublisher announces committed sales, keyed by sale id.
type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) PublishSaleCompleted(ctx context.Context, sale *model.Sale) error {
	event := SaleCompletedEvent{
		EventType:   EventSaleCompleted,
		SaleID:      sale.ID,
		TotalAmount: sale.TotalAmount,
		Timestamp:   sale.CreatedAt,
	}
	for _, item := range sale.Items {
		event.Items = append(event.Items, SaleEventItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}
	return p.producer.Publish(ctx, sale.ID, data, map[string]string{"event_type": EventSaleCompleted})
}
