package gcal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ErrNotConfigured means credentials or token are missing; calendar sync is off.
var ErrNotConfigured = errors.New("google calendar not configured")

// Client wraps the Google Calendar API client
type Client struct {
	service   *calendar.Service
	config    *oauth2.Config
	tokenFile string
	token     *oauth2.Token
	logger    *zap.Logger
}

// NewClient loads the OAuth client and, when a token exists, the calendar
// service. A missing credentials file yields ErrNotConfigured.
func NewClient(ctx context.Context, credentialsFile, tokenFile string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	config, err := loadOAuthConfig(credentialsFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth config: %w", err)
	}

	client := &Client{
		config:    config,
		tokenFile: tokenFile,
		logger:    logger,
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		logger.Info("no calendar token yet, run the calendar-auth command", zap.String("token_file", tokenFile))
		return client, nil
	}
	client.token = token
	if err := client.tryInitService(ctx); err != nil {
		logger.Warn("could not initialize calendar service with existing token", zap.Error(err))
	}
	return client, nil
}

// NewClientWithService wraps an already built service.
func NewClientWithService(service *calendar.Service) *Client {
	return &Client{service: service, logger: zap.NewNop()}
}

// tryInitService initializes the service, refreshing the token if needed
func (c *Client) tryInitService(ctx context.Context) error {
	if c.token == nil {
		return fmt.Errorf("no token available")
	}

	if !c.token.Valid() && c.token.RefreshToken != "" {
		newToken, err := c.config.TokenSource(ctx, c.token).Token()
		if err != nil {
			return fmt.Errorf("failed to refresh token: %w", err)
		}
		c.token = newToken
		if err := saveToken(c.tokenFile, newToken); err != nil {
			c.logger.Warn("could not save refreshed token", zap.Error(err))
		}
	}

	return c.initService(ctx)
}

// IsAuthenticated returns true if the client is authenticated
func (c *Client) IsAuthenticated() bool {
	return c != nil && c.service != nil
}

// GetAuthURL returns the OAuth authorization URL
func (c *Client) GetAuthURL() string {
	return c.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c *Client) initService(ctx context.Context) error {
	httpClient := c.config.Client(context.WithoutCancel(ctx), c.token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create calendar service: %w", err)
	}
	c.service = service
	return nil
}

// ExchangeCode exchanges an authorization code for a token and saves it
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	c.token = token
	if err := saveToken(c.tokenFile, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return c.initService(ctx)
}
