package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// amqpChannel is the part of *amqp091.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// WhatsAppPublisher hands WhatsApp reminders to a messaging gateway through
// a RabbitMQ topic exchange.
type WhatsAppPublisher struct {
	conn       *amqp091.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
}

// whatsAppEvent is the gateway contract.
type whatsAppEvent struct {
	ReminderID string `json:"reminder_id"`
	To         string `json:"to"`
	Name       string `json:"name"`
	Text       string `json:"text"`
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewWhatsAppPublisher dials the broker and declares the exchange.
func NewWhatsAppPublisher(amqpURL, exchange, routingKey string) (*WhatsAppPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	p, err := newWhatsAppPublisher(channel, exchange, routingKey)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newWhatsAppPublisher(channel amqpChannel, exchange, routingKey string) (*WhatsAppPublisher, error) {
	err := channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, err
	}
	return &WhatsAppPublisher{channel: channel, exchange: exchange, routingKey: routingKey}, nil
}

func (p *WhatsAppPublisher) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(whatsAppEvent{
		ReminderID: msg.ReminderID.String(),
		To:         msg.To,
		Name:       msg.Name,
		Text:       msg.Body,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.ReminderID.String(),
			Body:         body,
		})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	log.Debug().Str("reminder_id", msg.ReminderID.String()).Str("exchange", p.exchange).Msg("published whatsapp reminder")
	return nil
}

// Close closes the channel and connection.
func (p *WhatsAppPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
