package rabbitmq

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"docchat/internal/model"
)

func TestEncodeDecodeChatTurn(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	turn := model.ChatTurn{
		UserID:   9,
		Message:  "what is in my notes?",
		Response: "a shopping list",
		ContextDocuments: []model.ContextSource{
			{ID: 3, Filename: "notes.txt"},
		},
		CreatedAt: created,
	}
	msg, err := EncodeChatTurn(turn)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" {
		t.Fatalf("unexpected publishing %+v", msg)
	}

	got, err := DecodeChatTurn(msg.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UserID != 9 || got.Response != "a shopping list" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected turn %+v", got)
	}
	if len(got.ContextDocuments) != 1 || got.ContextDocuments[0].Filename != "notes.txt" {
		t.Fatalf("unexpected sources %+v", got.ContextDocuments)
	}
}

func TestDecodeChatTurnRejectsBadPayloads(t *testing.T) {
	if _, err := DecodeChatTurn([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeChatTurn([]byte(`{"message":"orphan"}`)); err == nil {
		t.Fatal("expected missing user error")
	}
}
