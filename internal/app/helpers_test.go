package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"

	"docchat/internal/ai"
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

type stubGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	prompts  []string
	sampling ai.SamplingConfig
}

func (g *stubGenerator) GenerateText(ctx context.Context, prompt string, sampling ai.SamplingConfig) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.sampling = sampling
	return g.reply, g.err
}

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

type memoryArchive struct {
	objects map[string][]byte
	failPut bool
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{objects: map[string][]byte{}}
}

func (a *memoryArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if a.failPut {
		return errors.New("bucket unavailable")
	}
	a.objects[key] = data
	return nil
}

func (a *memoryArchive) Delete(ctx context.Context, key string) error {
	delete(a.objects, key)
	return nil
}

type recordingPublisher struct {
	turns []model.ChatTurn
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, turn model.ChatTurn) error {
	if p.err != nil {
		return p.err
	}
	p.turns = append(p.turns, turn)
	return nil
}
