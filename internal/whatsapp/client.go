package whatsapp

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/omriShneor/project_casa/internal/logging"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

type Client struct {
	WAClient  *whatsmeow.Client
	handler   *Handler
	container *sqlstore.Container
	qrPath    string
	logger    *zap.Logger
}

// NewClient opens the device store at dbPath and wires handler to incoming events.
func NewClient(ctx context.Context, handler *Handler, dbPath, qrPath string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	container, err := sqlstore.New(ctx, "sqlite3", "file:"+dbPath+"?_foreign_keys=on", logging.WhatsApp(logger, "Database"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	waClient := whatsmeow.NewClient(deviceStore, logging.WhatsApp(logger, "Client"))

	c := &Client{
		WAClient:  waClient,
		handler:   handler,
		container: container,
		qrPath:    qrPath,
		logger:    logger,
	}

	if handler != nil {
		handler.SetReplier(c)
		waClient.AddEventHandler(handler.HandleEvent)
	}

	return c, nil
}

func (c *Client) IsLoggedIn() bool {
	return c.WAClient.Store.ID != nil
}

func (c *Client) IsConnected() bool {
	return c.WAClient.IsConnected()
}

// Connect restores the session, or pairs a new device by QR code when there is none.
// Pairing runs in the background until scanned or expired.
func (c *Client) Connect(ctx context.Context) error {
	if c.IsLoggedIn() {
		if err := c.WAClient.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, err := c.WAClient.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := c.WAClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	go func() {
		for evt := range qrChan {
			switch evt.Event {
			case "code":
				if err := DisplayQR(evt.Code, c.qrPath); err != nil {
					c.logger.Error("could not render QR code", zap.Error(err))
				}
				c.logger.Info("scan the QR code with WhatsApp > Linked devices", zap.String("png", c.qrPath))
			case "success":
				c.logger.Info("whatsapp paired successfully")
				return
			case "timeout":
				c.logger.Warn("QR code expired, restart to pair again")
				return
			}
		}
	}()
	return nil
}

// Reply sends a plain text message to the chat JID senderID.
func (c *Client) Reply(ctx context.Context, senderID, text string) error {
	jid, err := types.ParseJID(senderID)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", senderID, err)
	}
	_, err = c.WAClient.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.WAClient.Disconnect()
}
