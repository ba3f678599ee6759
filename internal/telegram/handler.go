package telegram

import (
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/tg"
	"github.com/omriShneor/project_casa/internal/source"
	"go.uber.org/zap"
)

// Handler turns bot updates into inbound messages. Only private messages
// from users are forwarded; groups and channels are ignored.
type Handler struct {
	messageChan chan<- source.Inbound
	replier     source.Replier
	logger      *zap.Logger

	mu    sync.RWMutex
	users map[int64]*tg.User
}

func NewHandler(messageChan chan<- source.Inbound, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		messageChan: messageChan,
		logger:      logger,
		users:       make(map[int64]*tg.User),
	}
}

// SetReplier sets where replies to Telegram messages go, normally the Client.
func (h *Handler) SetReplier(r source.Replier) {
	h.replier = r
}

// HandleUpdate processes a Telegram update
func (h *Handler) HandleUpdate(update tg.UpdatesClass) {
	switch u := update.(type) {
	case *tg.Updates:
		h.cacheUsers(u.Users)
		for _, upd := range u.Updates {
			h.handleSingleUpdate(upd)
		}
	case *tg.UpdatesCombined:
		h.cacheUsers(u.Users)
		for _, upd := range u.Updates {
			h.handleSingleUpdate(upd)
		}
	case *tg.UpdateShort:
		h.handleSingleUpdate(u.Update)
	case *tg.UpdateShortMessage:
		if u.Out {
			return
		}
		h.forward(u.UserID, u.Message, u.Date)
	}
}

func (h *Handler) cacheUsers(users []tg.UserClass) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			h.users[user.ID] = user
		}
	}
}

func (h *Handler) user(id int64) (*tg.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	u, ok := h.users[id]
	return u, ok
}

func (h *Handler) handleSingleUpdate(update tg.UpdateClass) {
	upd, ok := update.(*tg.UpdateNewMessage)
	if !ok {
		return
	}
	message, ok := upd.Message.(*tg.Message)
	if !ok || message.Out {
		return
	}
	peer, ok := message.PeerID.(*tg.PeerUser)
	if !ok {
		return
	}
	h.forward(peer.UserID, message.Message, message.Date)
}

func (h *Handler) forward(userID int64, text string, date int) {
	if text == "" {
		return
	}

	senderName := fmt.Sprintf("User %d", userID)
	if user, ok := h.user(userID); ok {
		if user.Bot {
			return
		}
		senderName = getUserName(user)
	}

	h.logger.Debug("telegram message", zap.Int64("user_id", userID), zap.Int("length", len(text)))

	in := source.Inbound{
		Message: source.Message{
			SourceType: source.SourceTypeTelegram,
			SenderID:   source.TelegramSenderID(userID),
			SenderName: senderName,
			Text:       text,
			Timestamp:  time.Unix(int64(date), 0),
		},
		Reply: h.replier,
	}

	select {
	case h.messageChan <- in:
	default:
		h.logger.Warn("message channel full, dropping message", zap.Int64("user_id", userID))
	}
}

// inputPeer resolves a user id to a sendable peer using the cached access hash.
func (h *Handler) inputPeer(userID int64) *tg.InputPeerUser {
	peer := &tg.InputPeerUser{UserID: userID}
	if user, ok := h.user(userID); ok {
		peer.AccessHash = user.AccessHash
	}
	return peer
}

func getUserName(user *tg.User) string {
	if user.FirstName != "" {
		if user.LastName != "" {
			return user.FirstName + " " + user.LastName
		}
		return user.FirstName
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return fmt.Sprintf("User %d", user.ID)
}
