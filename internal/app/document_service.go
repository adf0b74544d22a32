package app

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"docchat/internal/extract"
	"docchat/internal/model"
	"docchat/internal/platform/objectstore"
	"docchat/internal/repository"
)

const (
	DefaultMaxFileBytes = 10 * 1024 * 1024

	previewRunes       = 200
	maxFilenameRunes   = 255
	minUsefulTextRunes = 10
	extractionWarning  = "Text extraction may have had issues. Please verify."
)

type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) extract.Result
}

// RawArchive stores original upload bytes next to the extracted text.
type RawArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

type DocumentService struct {
	docRepo      *repository.DocumentRepository
	extractor    TextExtractor
	archive      RawArchive
	maxFileBytes int64
}

type UploadInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	DocumentID          uint    `json:"document_id"`
	Filename            string  `json:"filename"`
	ExtractedTextLength int     `json:"extracted_text_length"`
	FileSize            int     `json:"file_size"`
	TextPreview         string  `json:"text_preview"`
	Warning             *string `json:"warning"`
}

type DocumentSummary struct {
	ID            uint      `json:"id"`
	Filename      string    `json:"filename"`
	FileType      string    `json:"file_type"`
	CreatedAt     time.Time `json:"created_at"`
	ContentLength int       `json:"content_length"`
}

// NewDocumentService builds the service. archive may be nil; maxFileBytes
// <= 0 selects DefaultMaxFileBytes.
func NewDocumentService(docRepo *repository.DocumentRepository, extractor TextExtractor, archive RawArchive, maxFileBytes int64) *DocumentService {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &DocumentService{
		docRepo:      docRepo,
		extractor:    extractor,
		archive:      archive,
		maxFileBytes: maxFileBytes,
	}
}

func (s *DocumentService) MaxFileBytes() int64 {
	return s.maxFileBytes
}

func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	filename, err := sanitizeFilename(input.Filename)
	if err != nil {
		return nil, err
	}
	if int64(len(input.Data)) > s.maxFileBytes {
		return nil, ErrFileTooLarge
	}
	if len(input.Data) == 0 {
		return nil, ErrEmptyFile
	}

	result := s.extractor.Extract(ctx, input.Data, filename)
	text := result.String()

	var warning *string
	if strings.HasPrefix(text, "[Error") || utf8.RuneCountInString(strings.TrimSpace(text)) < minUsefulTextRunes {
		w := extractionWarning
		warning = &w
		slog.Warn("document extraction looks incomplete",
			"user_id", input.UserID, "filename", filename, "kind", result.Kind.String(), "diagnostic", !result.OK())
	}

	fileType := input.ContentType
	if fileType == "" {
		fileType = "unknown"
	}
	doc := &model.Document{
		UserID:   input.UserID,
		Filename: filename,
		Content:  text,
		FileType: fileType,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	if s.archive != nil {
		key := objectstore.DocumentKey(doc.UserID, doc.ID, doc.Filename)
		if err := s.archive.Put(ctx, key, input.Data, fileType); err != nil {
			slog.Warn("archive raw upload failed", "document_id", doc.ID, "key", key, "error", err)
		}
	}

	return &UploadResult{
		DocumentID:          doc.ID,
		Filename:            filename,
		ExtractedTextLength: utf8.RuneCountInString(text),
		FileSize:            len(input.Data),
		TextPreview:         preview(text, previewRunes),
		Warning:             warning,
	}, nil
}

func (s *DocumentService) List(userID uint) ([]DocumentSummary, error) {
	docs, err := s.docRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:            doc.ID,
			Filename:      doc.Filename,
			FileType:      doc.FileType,
			CreatedAt:     doc.CreatedAt,
			ContentLength: utf8.RuneCountInString(doc.Content),
		})
	}
	return summaries, nil
}

// Get hides documents owned by other users behind ErrDocumentNotFound.
func (s *DocumentService) Get(id, userID uint) (*model.Document, error) {
	doc, err := s.docRepo.GetByIDAndUserID(id, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, id, userID uint) error {
	doc, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	deleted, err := s.docRepo.DeleteByIDAndUserID(id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDocumentNotFound
	}

	if s.archive != nil {
		key := objectstore.DocumentKey(doc.UserID, doc.ID, doc.Filename)
		if err := s.archive.Delete(ctx, key); err != nil {
			slog.Warn("delete archived upload failed", "document_id", doc.ID, "key", key, "error", err)
		}
	}
	return nil
}

// sanitizeFilename rejects names with path separators or longer than the
// filename column, and strips leading dots.
func sanitizeFilename(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidFilename
	}
	cleaned := strings.TrimLeft(name, ".")
	if cleaned == "" || utf8.RuneCountInString(cleaned) > maxFilenameRunes {
		return "", ErrInvalidFilename
	}
	return cleaned, nil
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
