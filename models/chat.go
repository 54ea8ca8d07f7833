package models

import "time"

type ChatMessage struct {
	ID        string    `bson:"id" json:"id"`
	ShopID    string    `bson:"shopId" json:"shopId"`
	UserID    string    `bson:"userId" json:"userId"`
	SenderID  string    `bson:"senderId" json:"senderId"`
	Message   string    `bson:"message" json:"message"`
	Read      bool      `bson:"read" json:"read"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// ConversationSummary is one row of a shop's inbox.
type ConversationSummary struct {
	UserID          string    `bson:"userId" json:"userId"`
	ShopID          string    `bson:"shopId" json:"shopId"`
	LastMessage     string    `bson:"lastMessage" json:"lastMessage"`
	LastMessageTime time.Time `bson:"lastMessageTime" json:"lastMessageTime"`
	UnreadCount     int64     `bson:"unreadCount" json:"unreadCount"`
	CustomerName    string    `bson:"customerName,omitempty" json:"customerName,omitempty"`
}
