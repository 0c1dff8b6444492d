package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/pmv/internal/domain/model"
	"github.com/okian/pmv/internal/domain/stats"
)

// Client talks to the tracker API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type statsResponse struct {
	GameIDs []int64             `json:"game_ids"`
	Players []stats.PlayerStats `json:"players"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// StartGame opens a session and returns its id.
func (c *Client) StartGame(ctx context.Context) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/games", nil, nil, http.StatusCreated, &out); err != nil {
		return 0, fmt.Errorf("start game: %w", err)
	}
	return out.ID, nil
}

// PostEvent submits s against gameID. replayed reports a 200 replay.
func (c *Client) PostEvent(ctx context.Context, s Submission, gameID int64) (ev model.Event, replayed bool, err error) {
	body := map[string]any{"player": s.Player, "action": s.Action, "game_id": gameID}
	resp, err := c.do(ctx, http.MethodPost, "/events", body, map[string]string{"Idempotency-Key": s.Key})
	if err != nil {
		return model.Event{}, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusOK:
		replayed = resp.Header.Get("Idempotent-Replayed") == "true"
	default:
		b, _ := io.ReadAll(resp.Body)
		return model.Event{}, false, fmt.Errorf("post event: status %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return model.Event{}, false, fmt.Errorf("decode event: %w", err)
	}
	return ev, replayed, nil
}

// Stats fetches GET /stats restricted to gameIDs.
func (c *Client) Stats(ctx context.Context, gameIDs []int64) ([]stats.PlayerStats, error) {
	q := url.Values{}
	for _, id := range gameIDs {
		q.Add("game_id", strconv.FormatInt(id, 10))
	}
	var out statsResponse
	if err := c.call(ctx, http.MethodGet, "/stats?"+q.Encode(), nil, nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	return out.Players, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, headers map[string]string, want int, dst any) error {
	resp, err := c.do(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
