package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docchat/internal/model"
	"docchat/internal/repository"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type ChatTurnPublisher interface {
	Publish(ctx context.Context, turn model.ChatTurn) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.ChatTurn, bool, error)
	SetHistory(ctx context.Context, userID uint, turns []model.ChatTurn) error
	Invalidate(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type ChatService struct {
	docRepo      *repository.DocumentRepository
	turnRepo     *repository.ChatTurnRepository
	responder    *Responder
	publisher    ChatTurnPublisher
	historyCache HistoryCache
	now          func() time.Time
}

type ChatInput struct {
	UserID            uint
	Message           string
	SelectedDocuments []uint
	UseAllDocuments   bool
}

type ChatResult struct {
	Response       string                `json:"response"`
	ContextUsed    bool                  `json:"context_used"`
	ContextSources []model.ContextSource `json:"context_sources"`
}

// NewChatService wires the chat flow. publisher and historyCache are
// optional; without a publisher turns are written synchronously.
func NewChatService(
	docRepo *repository.DocumentRepository,
	turnRepo *repository.ChatTurnRepository,
	responder *Responder,
	publisher ChatTurnPublisher,
	historyCache HistoryCache,
) *ChatService {
	return &ChatService{
		docRepo:      docRepo,
		turnRepo:     turnRepo,
		responder:    responder,
		publisher:    publisher,
		historyCache: historyCache,
		now:          time.Now,
	}
}

func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	if blankMessage(input.Message) {
		return nil, ErrInvalidInput
	}

	docs, err := s.contextDocuments(input)
	if err != nil {
		return nil, err
	}
	docContext, sources := AssembleContext(docs)
	response := s.responder.Generate(ctx, input.Message, docContext)

	turn := model.ChatTurn{
		UserID:           input.UserID,
		Message:          input.Message,
		Response:         response,
		ContextDocuments: sources,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.appendTurn(ctx, turn); err != nil {
		return nil, err
	}

	return &ChatResult{
		Response:       response,
		ContextUsed:    len(sources) > 0,
		ContextSources: sources,
	}, nil
}

// contextDocuments returns every owned document when UseAllDocuments is set,
// otherwise the selected ones in selection order. Any selected id the user
// does not own fails the whole request.
func (s *ChatService) contextDocuments(input ChatInput) ([]model.Document, error) {
	if input.UseAllDocuments {
		return s.docRepo.ListByUserID(input.UserID)
	}
	ids := uniqueIDs(input.SelectedDocuments)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.docRepo.ListByIDsAndUserID(ids, input.UserID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Document, len(found))
	for _, doc := range found {
		byID[doc.ID] = doc
	}
	docs := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			return nil, ErrDocumentNotFound
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *ChatService) appendTurn(ctx context.Context, turn model.ChatTurn) error {
	if s.historyCache != nil {
		if err := s.historyCache.Invalidate(ctx, turn.UserID); err != nil {
			slog.Warn("invalidate chat history cache failed", "user_id", turn.UserID, "error", err)
		}
	}
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, turn)
		if err == nil {
			return nil
		}
		slog.Warn("publish chat turn failed, writing directly", "user_id", turn.UserID, "error", err)
	}
	return s.turnRepo.Create(&turn)
}

// History returns the user's latest turns oldest first. limit <= 0 means
// DefaultHistoryLimit; larger values are capped at MaxHistoryLimit.
func (s *ChatService) History(ctx context.Context, userID uint, limit int) ([]model.ChatTurn, error) {
	limit = clampHistoryLimit(limit)

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID)
			if cacheErr == nil && hit {
				return tailTurns(cached, limit), nil
			}
			if cacheErr != nil {
				slog.Warn("read chat history cache failed", "user_id", userID, "error", cacheErr)
			}
		}
	}

	turns, err := s.turnRepo.ListRecentByUserID(userID, MaxHistoryLimit)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []model.ChatTurn{}
	}

	if s.historyCache != nil {
		if dirty, err := s.historyCache.IsDirty(ctx, userID); err == nil && !dirty {
			if err := s.historyCache.SetHistory(ctx, userID, turns); err != nil {
				slog.Warn("write chat history cache failed", "user_id", userID, "error", err)
			}
		}
	}
	return tailTurns(turns, limit), nil
}

func clampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

func tailTurns(turns []model.ChatTurn, limit int) []model.ChatTurn {
	if len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// blankMessage reports a chat message with no visible text.
func blankMessage(msg string) bool {
	return strings.TrimSpace(msg) == ""
}
