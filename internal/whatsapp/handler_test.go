package whatsapp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/omriShneor/project_casa/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func privateMessage(text string) *events.Message {
	chat := types.NewJID("59899123456", types.DefaultUserServer)
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{Chat: chat, Sender: chat},
			PushName:      "Jane",
			Timestamp:     time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		},
		Message: &waE2E.Message{Conversation: proto.String(text)},
	}
}

func TestHandleEvent_PrivateMessage(t *testing.T) {
	ch := make(chan source.Inbound, 1)
	h := NewHandler(ch, nil)
	replier := source.ReplierFunc(func(context.Context, string, string) error { return nil })
	h.SetReplier(replier)

	h.HandleEvent(privateMessage("hola"))

	require.Len(t, ch, 1)
	in := <-ch
	assert.Equal(t, source.SourceTypeWhatsApp, in.SourceType)
	assert.Equal(t, "59899123456@s.whatsapp.net", in.SenderID)
	assert.Equal(t, "Jane", in.SenderName)
	assert.Equal(t, "hola", in.Text)
	assert.NotNil(t, in.Reply)
}

func TestHandleEvent_Filters(t *testing.T) {
	ch := make(chan source.Inbound, 10)
	h := NewHandler(ch, nil)

	fromMe := privateMessage("hola")
	fromMe.Info.IsFromMe = true
	h.HandleEvent(fromMe)

	group := privateMessage("hola")
	group.Info.IsGroup = true
	group.Info.Chat = types.NewJID("1203630", types.GroupServer)
	h.HandleEvent(group)

	status := privateMessage("hola")
	status.Info.Chat = types.StatusBroadcastJID
	h.HandleEvent(status)

	empty := privateMessage("")
	h.HandleEvent(empty)

	h.HandleEvent(&events.Message{})
	h.HandleEvent("not a message")

	assert.Empty(t, ch)
}

func TestHandleEvent_DropsWhenFull(t *testing.T) {
	ch := make(chan source.Inbound)
	h := NewHandler(ch, nil)
	assert.NotPanics(t, func() { h.HandleEvent(privateMessage("hola")) })
}

func TestExtractText(t *testing.T) {
	ext := privateMessage("")
	ext.Message = &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("quiero ver A-100")}}
	assert.Equal(t, "quiero ver A-100", extractText(ext))

	img := privateMessage("")
	img.Message = &waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("¿esta casa?")}}
	assert.Equal(t, "¿esta casa?", extractText(img))
}

func TestDisplayQR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")
	require.NoError(t, DisplayQR("2@abc,def,ghi", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
