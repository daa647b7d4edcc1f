package chat

type CreateMessageRequest struct {
	GroupID        int64  `json:"groupId"`
	SenderID       int64  `json:"senderId" binding:"required"`
	SenderUsername string `json:"senderUsername" binding:"required"`
	SenderBgColor  string `json:"senderBgColor"`
	Content        string `json:"content" binding:"required"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
