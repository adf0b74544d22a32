package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docchat/internal/ai"
)

const (
	groundedPromptTemplate = `You are a helpful AI assistant with access to the user's uploaded documents.

CONTEXT FROM USER'S DOCUMENTS:
%s

USER QUESTION: %s

INSTRUCTIONS:
1. Answer the user's question primarily based on the provided document context.
2. If the documents contain relevant information, cite specific parts and be detailed.
3. If the documents don't contain relevant information, clearly state this and provide general knowledge.

RESPONSE:`

	generalPromptTemplate = `You are a helpful AI assistant. The user has not selected any documents for context.

USER QUESTION: %s

Please provide a helpful, informative response based on your general knowledge.

RESPONSE:`

	apologyPrefix = "I apologize, but I encountered an error while processing your request: "
)

var responseSampling = ai.SamplingConfig{
	Temperature:     0.7,
	TopP:            0.8,
	TopK:            40,
	MaxOutputTokens: 2048,
}

// Responder turns a question plus optional document context into an answer.
// It never fails: model errors come back as an apology string.
type Responder struct {
	generator ai.TextGenerator
}

func NewResponder(generator ai.TextGenerator) *Responder {
	return &Responder{generator: generator}
}

func (r *Responder) Generate(ctx context.Context, question, docContext string) string {
	prompt := BuildPrompt(question, docContext)
	if r.generator == nil {
		return apologyPrefix + "no text model configured"
	}
	text, err := r.generator.GenerateText(ctx, prompt, responseSampling)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("model returned an empty response")
	}
	if err != nil {
		slog.Warn("generate response failed", "error", err)
		return apologyPrefix + err.Error()
	}
	return text
}

// BuildPrompt picks the grounded template when docContext has any
// non-whitespace content.
func BuildPrompt(question, docContext string) string {
	if strings.TrimSpace(docContext) != "" {
		return fmt.Sprintf(groundedPromptTemplate, docContext, question)
	}
	return fmt.Sprintf(generalPromptTemplate, question)
}
