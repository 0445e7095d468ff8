// Package remotesync sends archived shoe periods to the user's remote account.
package remotesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// periodNamespace scopes the deterministic idempotency keys of archived periods.
var periodNamespace = uuid.MustParse("5b0c3f4e-8a41-4b7e-9d55-2f3c1a6e0d21")

// Athlete identifies who the archive belongs to
type Athlete struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender string `json:"gender,omitempty"`
	Age    int    `json:"age,omitempty"`
}

// Workout is one workout inside an archived period
type Workout struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	DistanceMiles   float64 `json:"distance_miles"`
	Calories        float64 `json:"calories"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// Payload is the document posted for one archived shoe period
type Payload struct {
	PeriodID   int64     `json:"period_id"`
	Athlete    Athlete   `json:"athlete"`
	ArchivedAt time.Time `json:"archived_at"`
	TotalMiles float64   `json:"total_miles"`
	Workouts   []Workout `json:"workouts"`
}

// IdempotencyKey is stable for a given period so retried sends can be deduplicated.
func (p Payload) IdempotencyKey() string {
	name := strconv.FormatInt(p.PeriodID, 10) + "@" + p.ArchivedAt.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(periodNamespace, []byte(name)).String()
}

// Client posts payloads to the configured endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for endpoint. When token is non-empty every
// request carries it as a bearer token.
func NewClient(endpoint, token string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = 30 * time.Second
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Send posts one payload. Any non-2xx response is an error.
func (c *Client) Send(ctx context.Context, p Payload) error {
	if p.Workouts == nil {
		p.Workouts = []Workout{}
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", p.IdempotencyKey())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync error %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
