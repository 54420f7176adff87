package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

// Client talks to the game REST API on behalf of one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends body as JSON and decodes the response into out. Responses of 400
// and above become errors carrying the API's error message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession starts a new session and makes it the client's current one
func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	var body any
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

type ResetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) Reset(ctx context.Context) (*engine.GameState, error) {
	var resetResp ResetResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &resetResp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resetResp.State, nil
}

func (c *Client) Hint(ctx context.Context) (*solver.Hint, error) {
	var hint solver.Hint
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/hint"), nil, &hint); err != nil {
		return nil, fmt.Errorf("hint: %w", err)
	}
	return &hint, nil
}

// Place sends one placement. A rejected placement is not an error: the
// result carries the reason.
func (c *Client) Place(ctx context.Context, move engine.Move) (*service.PlaceResult, error) {
	var result service.PlaceResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/place"), move, &result); err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	return &result, nil
}

// BulkPlace sends several placements; the server stops at the first rejection
func (c *Client) BulkPlace(ctx context.Context, moves []engine.Move) (*service.BulkPlaceResult, error) {
	var result service.BulkPlaceResult
	body := map[string]any{"moves": moves}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/bulk-place"), body, &result); err != nil {
		return nil, fmt.Errorf("bulk place: %w", err)
	}
	return &result, nil
}

func (c *Client) SubmitScore(ctx context.Context, name string) (*service.ScoreResult, error) {
	var result service.ScoreResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/score"), map[string]string{"name": name}, &result); err != nil {
		return nil, fmt.Errorf("submit score: %w", err)
	}
	return &result, nil
}
