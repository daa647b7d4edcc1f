package models

import "time"

// Message is the wire form of a chat message as it travels between services.
// Field names follow the JSON contract shared by all three services; sender
// identity is canonically an int64 on every side.
type Message struct {
	ID             int64     `json:"id"`
	GroupID        int64     `json:"groupId"`
	SenderID       int64     `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	SenderBgColor  string    `json:"senderBgColor"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
