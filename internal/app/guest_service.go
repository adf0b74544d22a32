package app

import (
	"context"
	"unicode/utf8"

	"docchat/internal/extract"
)

// GuestService serves unauthenticated users. Nothing it produces is stored.
type GuestService struct {
	extractor    TextExtractor
	responder    *Responder
	maxFileBytes int64
}

type GuestExtractResult struct {
	ExtractedText   string `json:"extracted_text"`
	Filename        string `json:"filename"`
	FileSize        int    `json:"file_size"`
	ExtractedLength int    `json:"extracted_length"`
}

type GuestChatInput struct {
	Message        string
	Context        string
	ContextSources []map[string]any
}

type GuestChatResult struct {
	Response       string           `json:"response"`
	ContextUsed    bool             `json:"context_used"`
	ContextSources []map[string]any `json:"context_sources"`
}

func NewGuestService(extractor TextExtractor, responder *Responder, maxFileBytes int64) *GuestService {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &GuestService{
		extractor:    extractor,
		responder:    responder,
		maxFileBytes: maxFileBytes,
	}
}

func (s *GuestService) Extract(ctx context.Context, data []byte, filename string) (*GuestExtractResult, error) {
	filename = extract.DefaultFilename(filename)
	if int64(len(data)) > s.maxFileBytes {
		return nil, ErrFileTooLarge
	}
	text := s.extractor.Extract(ctx, data, filename).String()
	return &GuestExtractResult{
		ExtractedText:   text,
		Filename:        filename,
		FileSize:        len(data),
		ExtractedLength: utf8.RuneCountInString(text),
	}, nil
}

// Chat answers from caller-supplied context and echoes its sources back.
func (s *GuestService) Chat(ctx context.Context, input GuestChatInput) (*GuestChatResult, error) {
	if blankMessage(input.Message) {
		return nil, ErrInvalidInput
	}
	sources := input.ContextSources
	if sources == nil {
		sources = []map[string]any{}
	}
	return &GuestChatResult{
		Response:       s.responder.Generate(ctx, input.Message, input.Context),
		ContextUsed:    input.Context != "",
		ContextSources: sources,
	}, nil
}
