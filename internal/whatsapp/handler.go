package whatsapp

import (
	"github.com/omriShneor/project_casa/internal/source"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
)

// Handler turns whatsmeow events into inbound messages for the processor.
type Handler struct {
	messageChan chan<- source.Inbound
	replier     source.Replier
	logger      *zap.Logger
}

func NewHandler(messageChan chan<- source.Inbound, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{messageChan: messageChan, logger: logger}
}

// SetReplier sets where replies to WhatsApp messages go, normally the Client.
func (h *Handler) SetReplier(r source.Replier) {
	h.replier = r
}

func (h *Handler) HandleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		h.handleMessage(v)
	case *events.Connected:
		h.logger.Info("whatsapp connected")
	case *events.LoggedOut:
		h.logger.Warn("whatsapp logged out, pairing required", zap.Stringer("reason", v.Reason))
	}
}

func (h *Handler) handleMessage(msg *events.Message) {
	if !shouldHandle(msg) {
		return
	}
	text := extractText(msg)
	if text == "" {
		return
	}

	chat := msg.Info.Chat
	h.logger.Debug("whatsapp message", zap.String("from", chat.User), zap.Int("length", len(text)))

	in := source.Inbound{
		Message: source.Message{
			SourceType: source.SourceTypeWhatsApp,
			SenderID:   chat.String(),
			SenderName: msg.Info.PushName,
			Text:       text,
			Timestamp:  msg.Info.Timestamp,
		},
		Reply: h.replier,
	}

	select {
	case h.messageChan <- in:
	default:
		h.logger.Warn("message channel full, dropping message", zap.String("from", chat.User))
	}
}

// shouldHandle keeps private chats only: no groups, broadcasts, status updates or our own messages.
func shouldHandle(msg *events.Message) bool {
	if msg == nil || msg.Message == nil {
		return false
	}
	info := msg.Info
	if info.IsFromMe || info.IsGroup {
		return false
	}
	return info.Chat.Server != types.BroadcastServer && info.Chat.Server != types.GroupServer
}

func extractText(msg *events.Message) string {
	m := msg.Message

	if m.GetConversation() != "" {
		return m.GetConversation()
	}

	if ext := m.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}

	if img := m.GetImageMessage(); img != nil && img.GetCaption() != "" {
		return img.GetCaption()
	}

	return ""
}
