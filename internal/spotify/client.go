// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api    *spotify.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "spotify").Logger()
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{api: api, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the client's current OAuth token, which may have been
// refreshed since the client was created.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.api.Token()
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// CurrentUser returns the profile of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (Profile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("getting current user: %w", err)
	}

	p := Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}
	if len(user.Images) > 0 {
		p.ImageURL = user.Images[0].URL
	}
	return p, nil
}
