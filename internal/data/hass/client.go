// Package hass is a Home Assistant REST API client implementing the history,
// logbook and state sources.
package hass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/penwyp/go-ha-logbook/internal/core/constants"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

var (
	// ErrEntityNotFound is returned by GetState when Home Assistant has no such entity.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrUnauthorized means the access token was rejected.
	ErrUnauthorized = errors.New("home assistant rejected the access token")
)

// Config holds connection settings
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the Home Assistant REST API.
type Client struct {
	client *resty.Client
}

// NewClient creates a client authenticated with a long-lived access token.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("home assistant url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid home assistant url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}

	return &Client{client: c}, nil
}

// FetchHistory returns the state samples of an entity within [since, until], oldest first.
func (c *Client) FetchHistory(ctx context.Context, entityID string, since, until time.Time) ([]model.RawStateSample, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("since", isoTime(since)).
		SetQueryParams(map[string]string{
			"filter_entity_id": entityID,
			"end_time":         isoTime(until),
		}).
		Get("/api/history/period/{since}")
	if err := checkResponse(resp, err, "history"); err != nil {
		return nil, err
	}

	// One inner list per requested entity; no list at all when nothing changed.
	var periods [][]model.RawStateSample
	if err := sonic.Unmarshal(resp.Body(), &periods); err != nil {
		return nil, fmt.Errorf("failed to decode history for %s: %w", entityID, err)
	}
	if len(periods) == 0 {
		return nil, nil
	}

	util.LogDebug("Fetched history",
		util.F("entity", entityID),
		util.F("samples", len(periods[0])))
	return periods[0], nil
}

// FetchLogs returns the logbook entries of an entity within [since, until].
func (c *Client) FetchLogs(ctx context.Context, entityID string, since, until time.Time) ([]model.RawLogEntry, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("since", isoTime(since)).
		SetQueryParams(map[string]string{
			"entity":   entityID,
			"end_time": isoTime(until),
		}).
		Get("/api/logbook/{since}")
	if err := checkResponse(resp, err, "logbook"); err != nil {
		return nil, err
	}

	var entries []model.RawLogEntry
	if err := sonic.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode logbook for %s: %w", entityID, err)
	}

	util.LogDebug("Fetched logbook",
		util.F("entity", entityID),
		util.F("entries", len(entries)))
	return entries, nil
}

// GetState returns the current state of an entity, or ErrEntityNotFound.
func (c *Client) GetState(ctx context.Context, entityID string) (*model.RawStateSample, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("entity", entityID).
		Get("/api/states/{entity}")
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", entityID, ErrEntityNotFound)
	}
	if err := checkResponse(resp, err, "state"); err != nil {
		return nil, err
	}

	var state model.RawStateSample
	if err := sonic.Unmarshal(resp.Body(), &state); err != nil {
		return nil, fmt.Errorf("failed to decode state of %s: %w", entityID, err)
	}
	return &state, nil
}

// FetchState is GetState with a missing entity reported as (nil, nil).
func (c *Client) FetchState(ctx context.Context, entityID string) (*model.RawStateSample, error) {
	state, err := c.GetState(ctx, entityID)
	if errors.Is(err, ErrEntityNotFound) {
		return nil, nil
	}
	return state, err
}

// Ping checks that the API is reachable and the token accepted.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/api/")
	return checkResponse(resp, err, "ping")
}

func checkResponse(resp *resty.Response, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s request failed: %w", what, err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return fmt.Errorf("%s request: %w", what, ErrUnauthorized)
	case resp.IsError():
		return fmt.Errorf("%s request: status %d: %s", what, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
