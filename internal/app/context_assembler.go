package app

import (
	"fmt"
	"strings"

	"docchat/internal/model"
)

// AssembleContext renders docs in order, each under a "--- Document: name ---"
// header, and returns the matching provenance list.
func AssembleContext(docs []model.Document) (string, []model.ContextSource) {
	sources := make([]model.ContextSource, 0, len(docs))
	if len(docs) == 0 {
		return "", sources
	}
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, fmt.Sprintf("--- Document: %s ---\n%s", doc.Filename, doc.Content))
		sources = append(sources, model.ContextSource{ID: doc.ID, Filename: doc.Filename})
	}
	return strings.Join(parts, "\n\n"), sources
}
