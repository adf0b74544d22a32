package model

import "time"

// Document is an uploaded file reduced to its extracted text. Content may
// hold a bracketed diagnostic instead of text when extraction failed.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Filename  string    `gorm:"size:255;not null" json:"filename"`
	Content   string    `gorm:"not null" json:"content"`
	FileType  string    `gorm:"size:255" json:"file_type"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
