package moderation

import "time"

// Record is the persisted snapshot of a message that failed moderation.
// MessageID is unique: repeated scans of the same message converge on a
// single row.
type Record struct {
	ID             string    `json:"id"`
	MessageID      int64     `json:"messageId"`
	GroupID        int64     `json:"groupId"`
	SenderID       int64     `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	SenderBgColor  string    `json:"senderBgColor"`
	Content        string    `json:"content"`
	InvalidTerms   []string  `json:"invalidTerms"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Term struct {
	ID        string    `json:"id"`
	Term      string    `json:"term"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateTermRequest struct {
	Term    string `json:"term" binding:"required"`
	Enabled *bool  `json:"enabled"`
}
