package model

import (
	"time"

	"gorm.io/datatypes"
)

// ContextSource identifies a document that was fed to the model.
type ContextSource struct {
	ID       uint   `json:"id"`
	Filename string `json:"filename"`
}

type ChatTurn struct {
	ID               uint                              `gorm:"primaryKey" json:"id"`
	UserID           uint                              `gorm:"not null;index" json:"user_id"`
	Message          string                            `gorm:"not null" json:"message"`
	Response         string                            `gorm:"not null" json:"response"`
	ContextDocuments datatypes.JSONSlice[ContextSource] `json:"context_documents"`
	CreatedAt        time.Time                         `json:"created_at"`
}
