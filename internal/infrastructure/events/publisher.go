// Package events publica eventos de dominio en RabbitMQ (exchange topic).
// Toda publicación es best-effort desde los casos de uso: un broker caído
// nunca debe fallar un escaneo ni un alta de producto.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/InvenScan-api/internal/domain/entity"
	"github.com/jhoicas/InvenScan-api/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeType = "topic"

	RoutingKeyStockUpdated   = "scan.stock_updated"
	RoutingKeyProductCreated = "product.created"
)

// Event envoltura común de los eventos publicados.
type Event struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// Publisher publica eventos en un exchange topic de RabbitMQ.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *logger.Logger
}

// NewPublisher conecta al broker y declara el exchange durable.
func NewPublisher(url, exchange string, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	if err := channel.ExchangeDeclare(
		exchange, exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declarar exchange: %w", err)
	}
	log.Info().Str("exchange", exchange).Msg("Conectado a RabbitMQ")
	return &Publisher{conn: conn, channel: channel, exchange: exchange, log: log}, nil
}

// StockUpdated publica el evento de stock actualizado por escaneo.
func (p *Publisher) StockUpdated(ctx context.Context, record *entity.ScanRecord) error {
	return p.publish(ctx, RoutingKeyStockUpdated, map[string]any{
		"user_id":      record.UserID,
		"product_id":   record.ProductID,
		"product_name": record.ProductName,
		"barcode":      record.Barcode,
		"stock_before": record.StockBefore,
		"stock_after":  record.StockAfter,
		"scanned_at":   record.ScannedAt.UTC().Format(time.RFC3339),
	})
}

// ProductCreated publica el evento de producto creado.
func (p *Publisher) ProductCreated(ctx context.Context, product *entity.Product) error {
	return p.publish(ctx, RoutingKeyProductCreated, map[string]any{
		"user_id":    product.UserID,
		"product_id": product.ID,
		"barcode":    product.Barcode,
		"name":       product.Name,
		"stock":      product.StockQuantity,
	})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload map[string]any) error {
	event := Event{
		EventID:   uuid.New().String(),
		EventType: routingKey,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	err = p.channel.PublishWithContext(ctx,
		p.exchange, routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    event.EventID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publicar %s: %w", routingKey, err)
	}
	p.log.Debug().Str("routing_key", routingKey).Str("event_id", event.EventID).
		Msg("Evento publicado")
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error().Err(err).Msg("Error cerrando canal AMQP")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	return nil
}
