package authorizations

import (
	"context"

	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/brizzai/tokenctl/internal/requester"
	"go.uber.org/zap"
)

// Client manages the authorizations of the authenticated user.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	conn      requester.ApiConnection[Authorization]
	maxRounds int
}

// Option configures a Client
type Option func(*Client)

// WithMaxChallengeRounds caps how often the challenge handler is asked for a
// code within one get-or-create call. Zero, the default, means no cap.
func WithMaxChallengeRounds(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRounds = n
		}
	}
}

// NewClient creates a Client over conn
func NewClient(conn requester.ApiConnection[Authorization], opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, ErrNilConnection
	}
	c := &Client{conn: conn}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetAll lists every authorization visible to the current credentials, in server order
func (c *Client) GetAll(ctx context.Context) ([]Authorization, error) {
	return c.conn.GetAll(ctx, AuthorizationsURL())
}

// Get fetches one authorization
func (c *Client) Get(ctx context.Context, id int64) (Authorization, error) {
	if id <= 0 {
		return Authorization{}, invalidArgument("id must be positive, got %d", id)
	}
	return c.conn.Get(ctx, AuthorizationURL(id))
}

// Create creates a new authorization
func (c *Client) Create(ctx context.Context, update *AuthorizationUpdate) (Authorization, error) {
	if update == nil {
		return Authorization{}, invalidArgument("update must not be nil")
	}
	logger.Debug("creating authorization", zap.String("note", update.Note), zap.Strings("scopes", update.Scopes))
	return c.conn.Create(ctx, AuthorizationsURL(), update)
}

// Update applies a partial update to an existing authorization
func (c *Client) Update(ctx context.Context, id int64, update *AuthorizationUpdate) (Authorization, error) {
	if id <= 0 {
		return Authorization{}, invalidArgument("id must be positive, got %d", id)
	}
	if update == nil {
		return Authorization{}, invalidArgument("update must not be nil")
	}
	return c.conn.Update(ctx, AuthorizationURL(id), update)
}

// Delete revokes an authorization. Deleting an unknown id fails with ErrNotFound.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidArgument("id must be positive, got %d", id)
	}
	return c.conn.Delete(ctx, AuthorizationURL(id))
}
