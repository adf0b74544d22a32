package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"docchat/internal/model"
)

// ChatTurnPublisher queues chat turns for the persist worker.
type ChatTurnPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewChatTurnPublisher(conn *amqp.Connection, queueName string) *ChatTurnPublisher {
	return &ChatTurnPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ChatTurnPublisher) Publish(ctx context.Context, turn model.ChatTurn) error {
	msg, err := EncodeChatTurn(turn)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queueName, false, false, msg); err != nil {
		return fmt.Errorf("publish chat turn failed: %w", err)
	}
	return nil
}

// EncodeChatTurn renders a turn as a persistent JSON message.
func EncodeChatTurn(turn model.ChatTurn) (amqp.Publishing, error) {
	payload, err := json.Marshal(turn)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal chat turn failed: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp.Persistent,
		Timestamp:    turn.CreatedAt,
	}, nil
}

// DecodeChatTurn is the inverse of EncodeChatTurn.
func DecodeChatTurn(body []byte) (model.ChatTurn, error) {
	var turn model.ChatTurn
	if err := json.Unmarshal(body, &turn); err != nil {
		return model.ChatTurn{}, fmt.Errorf("decode chat turn failed: %w", err)
	}
	if turn.UserID == 0 {
		return model.ChatTurn{}, fmt.Errorf("decode chat turn failed: missing user_id")
	}
	return turn, nil
}
