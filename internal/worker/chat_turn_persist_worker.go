package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docchat/internal/model"
	"docchat/internal/platform/rabbitmq"
)

type ChatTurnWriter interface {
	Create(turn *model.ChatTurn) error
}

// HistoryDropper forgets a user's cached history once a turn is stored.
type HistoryDropper interface {
	DeleteHistory(ctx context.Context, userID uint) error
}

// ChatTurnPersistWorker consumes queued chat turns and writes them to the
// database. Undecodable or unwritable deliveries are dropped without requeue.
type ChatTurnPersistWorker struct {
	conn      *amqp.Connection
	repo      ChatTurnWriter
	history   HistoryDropper
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewChatTurnPersistWorker(conn *amqp.Connection, repo ChatTurnWriter, history HistoryDropper, queueName string) *ChatTurnPersistWorker {
	return &ChatTurnPersistWorker{
		conn:      conn,
		repo:      repo,
		history:   history,
		queueName: queueName,
	}
}

func (w *ChatTurnPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					slog.Warn("chat turn deliveries channel closed", "queue", w.queueName)
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	slog.Info("chat turn persist worker started", "queue", w.queueName)
	return nil
}

func (w *ChatTurnPersistWorker) handle(ctx context.Context, d amqp.Delivery) {
	turn, err := rabbitmq.DecodeChatTurn(d.Body)
	if err != nil {
		slog.Error("worker decode chat turn failed", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.repo.Create(&turn); err != nil {
		slog.Error("worker persist chat turn failed", "user_id", turn.UserID, "error", err)
		_ = d.Nack(false, false)
		return
	}
	if w.history != nil {
		if err := w.history.DeleteHistory(ctx, turn.UserID); err != nil {
			slog.Warn("worker drop cached history failed", "user_id", turn.UserID, "error", err)
		}
	}

	_ = d.Ack(false)
}

func (w *ChatTurnPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
