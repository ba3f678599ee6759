package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

var ErrNotConnected = errors.New("telegram client not connected")

// Client runs the agency's Telegram bot
type Client struct {
	apiID       int
	apiHash     string
	botToken    string
	sessionPath string
	handler     *Handler
	logger      *zap.Logger

	mu        sync.RWMutex
	api       *tg.Client
	sender    *message.Sender
	connected bool
	cancel    context.CancelFunc
}

// ClientConfig holds configuration for the Telegram client
type ClientConfig struct {
	APIID       int
	APIHash     string
	BotToken    string
	SessionPath string
	Handler     *Handler
	Logger      *zap.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("Telegram API ID and API Hash are required")
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("Telegram bot token is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Client{
		apiID:       cfg.APIID,
		apiHash:     cfg.APIHash,
		botToken:    cfg.BotToken,
		sessionPath: cfg.SessionPath,
		handler:     cfg.Handler,
		logger:      cfg.Logger,
	}
	if c.handler != nil {
		c.handler.SetReplier(c)
	}
	return c, nil
}

// Connect starts the client in the background and logs in as the bot.
// It returns once the API is ready or the wait times out.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.mu.Unlock()

	client := telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: &FileSessionStorage{Path: c.sessionPath},
		UpdateHandler:  c,
	})

	ready := make(chan error, 1)
	go func() {
		err := client.Run(runCtx, func(ctx context.Context) error {
			status, err := client.Auth().Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get auth status: %w", err)
			}
			if !status.Authorized {
				if _, err := client.Auth().Bot(ctx, c.botToken); err != nil {
					return fmt.Errorf("failed to log in bot: %w", err)
				}
			}

			api := client.API()
			c.mu.Lock()
			c.api = api
			c.sender = message.NewSender(api)
			c.connected = true
			c.mu.Unlock()
			ready <- nil

			<-ctx.Done()
			return ctx.Err()
		})

		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("telegram client stopped", zap.Error(err))
			select {
			case ready <- err:
			default:
			}
		}
	}()

	select {
	case err := <-ready:
		if err == nil {
			c.logger.Info("telegram bot connected")
		}
		return err
	case <-time.After(15 * time.Second):
		return fmt.Errorf("timeout waiting for Telegram client to connect")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.connected = false
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Handle implements telegram.UpdateHandler
func (c *Client) Handle(ctx context.Context, u tg.UpdatesClass) error {
	if c.handler != nil {
		c.handler.HandleUpdate(u)
	}
	return nil
}

// Reply sends text to the "tg:<user id>" sender.
func (c *Client) Reply(ctx context.Context, senderID, text string) error {
	userID, err := ParseSenderID(senderID)
	if err != nil {
		return err
	}

	c.mu.RLock()
	sender := c.sender
	c.mu.RUnlock()
	if sender == nil {
		return ErrNotConnected
	}

	peer := &tg.InputPeerUser{UserID: userID}
	if c.handler != nil {
		peer = c.handler.inputPeer(userID)
	}
	if _, err := sender.To(peer).Text(ctx, text); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ParseSenderID extracts the user id from a "tg:<user id>" sender id.
func ParseSenderID(senderID string) (int64, error) {
	raw, ok := strings.CutPrefix(senderID, "tg:")
	if !ok {
		return 0, fmt.Errorf("not a telegram sender: %q", senderID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram sender %q: %w", senderID, err)
	}
	return id, nil
}
