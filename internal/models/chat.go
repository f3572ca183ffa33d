// internal/models/chat.go
package models

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Category      string `json:"category"`
	Reply         string `json:"reply"`
	Source        string `json:"source"`
	TypingDelayMs int64  `json:"typingDelayMs"`
}

type InventoryTickRequest struct {
	Visible bool `json:"visible"`
}

type InventoryTickResponse struct {
	Count       int  `json:"count"`
	Decremented bool `json:"decremented"`
}
