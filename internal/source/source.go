// Package source defines the transport-neutral shapes shared by the chat
// transports and the conversation engine.
package source

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// SourceType identifies the message source
type SourceType string

const (
	SourceTypeWhatsApp SourceType = "whatsapp"
	SourceTypeTelegram SourceType = "telegram"
	SourceTypeConsole  SourceType = "console"
)

// Message is an inbound private text message from a client
type Message struct {
	SourceType SourceType
	SenderID   string // WhatsApp JID / "tg:<user id>" / console name
	SenderName string
	Text       string
	Timestamp  time.Time
}

// Replier sends text back to a sender on the transport the message came from
type Replier interface {
	Reply(ctx context.Context, senderID, text string) error
}

// ReplierFunc adapts a function to Replier
type ReplierFunc func(ctx context.Context, senderID, text string) error

func (f ReplierFunc) Reply(ctx context.Context, senderID, text string) error {
	return f(ctx, senderID, text)
}

// Handler consumes inbound messages
type Handler interface {
	HandleMessage(ctx context.Context, msg Message, reply Replier)
}

// TelegramSenderID namespaces Telegram user ids so they never collide with JIDs
func TelegramSenderID(userID int64) string {
	return "tg:" + strconv.FormatInt(userID, 10)
}

// Contact is the phone-like part of a sender id, used as booking contact
func Contact(senderID string) string {
	if i := strings.IndexByte(senderID, '@'); i > 0 {
		return senderID[:i]
	}
	return senderID
}

// Inbound pairs a message with the transport that must answer it
type Inbound struct {
	Message
	Reply Replier
}
