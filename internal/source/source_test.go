package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTelegramSenderID(t *testing.T) {
	assert.Equal(t, "tg:12345", TelegramSenderID(12345))
}

func TestContact(t *testing.T) {
	assert.Equal(t, "59899123456", Contact("59899123456@s.whatsapp.net"))
	assert.Equal(t, "tg:42", Contact("tg:42"))
}

func TestReplierFunc(t *testing.T) {
	var got string
	r := ReplierFunc(func(ctx context.Context, senderID, text string) error {
		got = senderID + ":" + text
		return nil
	})
	assert.NoError(t, r.Reply(context.Background(), "a", "hola"))
	assert.Equal(t, "a:hola", got)
}
