// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package profile is the client for the external user-profile service.
//
// Login fetches the user's profile with the configured facet, derives mood
// and rest facts from it and records them in a FactStore so later context
// checks see them. Calls go through a circuit breaker so a failing profile
// service degrades to "login failed" replies instead of stalled turns.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// ErrUnavailable wraps every failure to obtain a profile.
var ErrUnavailable = errors.New("profile service unavailable")

// TokenHeader carries the access token on profile requests.
const TokenHeader = "x-access-token"

const (
	tokenIssuer     = "cicerone"
	maxProfileBytes = 1 << 20
)

// FactStore receives the facts learned at login.
type FactStore interface {
	Set(userID int64, facts usercontext.UserContext)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the profile service root, e.g. https://profiles.example.org.
	BaseURL string

	// Token is a static access token. Ignored when SigningKey is set.
	Token string

	// SigningKey mints an HS256 token per request, valid for TokenTTL.
	SigningKey string
	TokenTTL   time.Duration

	Timeout       time.Duration
	Limit         int
	Facet         string
	RestedMinutes int

	Breaker BreakerSettings

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client talks to the profile service.
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	store   FactStore
	breaker *gobreaker.CircuitBreaker[*fetchResult]
	now     func() time.Time
}

type fetchResult struct {
	status int
	doc    *Document
}

// NewClient validates cfg and returns a client recording facts into store.
func NewClient(cfg Config, store FactStore) (*Client, error) {
	if store == nil {
		return nil, errors.New("profile: fact store is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("profile: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("profile: base URL must be http or https, got %q", cfg.BaseURL)
	}
	if cfg.Token == "" && cfg.SigningKey == "" {
		return nil, errors.New("profile: a token or signing key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 5 * time.Minute
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Facet == "" {
		cfg.Facet = "Affects"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		cfg:     cfg,
		base:    base,
		http:    hc,
		store:   store,
		breaker: newBreaker("profile", cfg.Breaker),
		now:     time.Now,
	}, nil
}

// Login fetches the profile of username, stores the derived facts for
// userID and returns a status line for the user.
func (c *Client) Login(ctx context.Context, userID int64, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		metrics.RecordProfileRequest("failure")
		return "", fmt.Errorf("%w: empty username", ErrUnavailable)
	}

	res, err := c.breaker.Execute(func() (*fetchResult, error) {
		return c.fetch(ctx, username)
	})
	if err != nil {
		if rejected(err) {
			metrics.RecordProfileRequest("rejected")
		} else {
			metrics.RecordProfileRequest("failure")
		}
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.RecordProfileRequest("success")

	facts := res.doc.Facts(c.cfg.RestedMinutes)
	c.store.Set(userID, facts)

	logging.Ctx(ctx).Info().
		Str("profile", username).
		Bool("mood_known", facts.Mood != nil).
		Bool("rested_known", facts.Rested != nil).
		Msg("Profile loaded")

	return fmt.Sprintf("Profile loaded (HTTP %d).", res.status), nil
}

func (c *Client) fetch(ctx context.Context, username string) (*fetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	token, err := c.token(username)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL(username), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(TokenHeader, token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	doc := &Document{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, doc); err != nil {
			// The service answered; an unreadable body only means no facts.
			logging.Ctx(ctx).Debug().Err(err).Msg("Profile body not understood")
			doc = &Document{}
		}
	}
	return &fetchResult{status: resp.StatusCode, doc: doc}, nil
}

func (c *Client) profileURL(username string) string {
	// Path holds the decoded form and RawPath the escaped one, so a slash in
	// the username stays a single segment.
	u := *c.base
	u.Path = c.base.Path + "/api/profile/" + username
	u.RawPath = c.base.EscapedPath() + "/api/profile/" + url.PathEscape(username)
	q := url.Values{}
	q.Set("l", strconv.Itoa(c.cfg.Limit))
	q.Set("f", c.cfg.Facet)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) token(username string) (string, error) {
	if c.cfg.SigningKey == "" {
		return c.cfg.Token, nil
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.SigningKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
