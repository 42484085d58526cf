package event

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"

	"quest-quiz-service/internal/models"
)

// Routing keys published by the quiz engine.
const (
	SessionStarted   = "quest.session.started"
	SessionCompleted = "quest.session.completed"
	SessionReset     = "quest.session.reset"
)

// EventPublisher reports session lifecycle events to the external
// progress/XP subsystem over a topic exchange.
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends one event with the routing key eventType.
func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	log.Printf("[EVENT] %s", eventType)

	return p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// PublishCompletion reports the completion contract for a finished session.
func (p *EventPublisher) PublishCompletion(ev models.CompletionEvent) error {
	return p.Publish(SessionCompleted, ev)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
