package worker

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"docchat/internal/model"
	"docchat/internal/platform/rabbitmq"
)

type recordingAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *recordingAck) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *recordingAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *recordingAck) Reject(tag uint64, requeue bool) error {
	return nil
}

type fakeWriter struct {
	turns []model.ChatTurn
	err   error
}

func (f *fakeWriter) Create(turn *model.ChatTurn) error {
	if f.err != nil {
		return f.err
	}
	turn.ID = uint(len(f.turns) + 1)
	f.turns = append(f.turns, *turn)
	return nil
}

type fakeHistory struct {
	dropped []uint
}

func (f *fakeHistory) DeleteHistory(ctx context.Context, userID uint) error {
	f.dropped = append(f.dropped, userID)
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, turn model.ChatTurn) amqp.Delivery {
	t.Helper()
	msg, err := rabbitmq.EncodeChatTurn(turn)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: msg.Body}
}

func TestHandlePersistsAndAcks(t *testing.T) {
	writer := &fakeWriter{}
	history := &fakeHistory{}
	w := NewChatTurnPersistWorker(nil, writer, history, "q")
	ack := &recordingAck{}

	w.handle(context.Background(), delivery(t, ack, model.ChatTurn{UserID: 5, Message: "m", Response: "r"}))

	if ack.acked != 1 || ack.nacked != 0 {
		t.Fatalf("expected ack, got %+v", ack)
	}
	if len(writer.turns) != 1 || writer.turns[0].UserID != 5 {
		t.Fatalf("turn not persisted: %+v", writer.turns)
	}
	if len(history.dropped) != 1 || history.dropped[0] != 5 {
		t.Fatalf("history not dropped: %+v", history.dropped)
	}
}

func TestHandleNacksWithoutRequeue(t *testing.T) {
	w := NewChatTurnPersistWorker(nil, &fakeWriter{err: errors.New("db down")}, nil, "q")

	failed := &recordingAck{}
	w.handle(context.Background(), delivery(t, failed, model.ChatTurn{UserID: 5}))
	if failed.nacked != 1 || failed.requeue {
		t.Fatalf("expected nack without requeue, got %+v", failed)
	}

	garbage := &recordingAck{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: garbage, Body: []byte("nope")})
	if garbage.nacked != 1 || garbage.acked != 0 {
		t.Fatalf("expected nack for garbage, got %+v", garbage)
	}
}
