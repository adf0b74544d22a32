package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"docchat/internal/model"
	"docchat/internal/platform/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New(context.Background(), database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{Email: "ada@example.com", PasswordHash: "h", FullName: "Ada"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if err := repo.Create(&model.User{Email: "ada@example.com", PasswordHash: "x"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.GetByEmail("ada@example.com")
	if err != nil || got == nil || got.ID != user.ID {
		t.Fatalf("get by email: %v %+v", err, got)
	}
	missing, err := repo.GetByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil; got %v %+v", err, missing)
	}
	byID, err := repo.GetByID(user.ID)
	if err != nil || byID == nil || byID.FullName != "Ada" {
		t.Fatalf("get by id: %v %+v", err, byID)
	}
	if none, err := repo.GetByID(9999); err != nil || none != nil {
		t.Fatalf("expected nil, nil; got %v %+v", err, none)
	}
}

func TestDocumentRepositoryOwnership(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	docs := []*model.Document{
		{UserID: 1, Filename: "a.txt", Content: "A", FileType: "text/plain", CreatedAt: base},
		{UserID: 1, Filename: "b.txt", Content: "B", FileType: "text/plain", CreatedAt: base.Add(time.Minute)},
		{UserID: 2, Filename: "c.txt", Content: "C", FileType: "text/plain", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, d := range docs {
		if err := repo.Create(d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListByUserID(1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Filename != "b.txt" || list[1].Filename != "a.txt" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if d, err := repo.GetByIDAndUserID(docs[2].ID, 1); err != nil || d != nil {
		t.Fatalf("foreign document must be invisible: %v %+v", err, d)
	}
	if d, err := repo.GetByIDAndUserID(docs[0].ID, 1); err != nil || d == nil || d.Content != "A" {
		t.Fatalf("own document: %v %+v", err, d)
	}

	subset, err := repo.ListByIDsAndUserID([]uint{docs[0].ID, docs[2].ID}, 1)
	if err != nil {
		t.Fatalf("list by ids: %v", err)
	}
	if len(subset) != 1 || subset[0].ID != docs[0].ID {
		t.Fatalf("expected only owned id, got %+v", subset)
	}

	deleted, err := repo.DeleteByIDAndUserID(docs[2].ID, 1)
	if err != nil || deleted {
		t.Fatalf("delete foreign: %v %v", err, deleted)
	}
	deleted, err = repo.DeleteByIDAndUserID(docs[0].ID, 1)
	if err != nil || !deleted {
		t.Fatalf("delete own: %v %v", err, deleted)
	}
	if d, _ := repo.GetByIDAndUserID(docs[0].ID, 1); d != nil {
		t.Fatal("document still present after delete")
	}
}

func TestChatTurnRepositoryRecentOldestFirst(t *testing.T) {
	repo := NewChatTurnRepository(newTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		turn := &model.ChatTurn{
			UserID:    1,
			Message:   string(rune('a' + i)),
			Response:  "r",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i == 4 {
			turn.ContextDocuments = []model.ContextSource{{ID: 10, Filename: "x.pdf"}}
		}
		if err := repo.Create(turn); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(&model.ChatTurn{UserID: 2, Message: "other", Response: "r", CreatedAt: base}); err != nil {
		t.Fatalf("create: %v", err)
	}

	turns, err := repo.ListRecentByUserID(1, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Message != "c" || turns[2].Message != "e" {
		t.Fatalf("expected c..e oldest first, got %q..%q", turns[0].Message, turns[2].Message)
	}
	if len(turns[2].ContextDocuments) != 1 || turns[2].ContextDocuments[0].Filename != "x.pdf" {
		t.Fatalf("context documents not round-tripped: %+v", turns[2].ContextDocuments)
	}
}
