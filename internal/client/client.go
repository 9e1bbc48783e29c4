// Package client talks to the daycal HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/notify"
)

var ErrNoServer = errors.New("client: no server url")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: server returned %d", e.Status)
	}
	return fmt.Sprintf("client: server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoServer
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

type tasksEnvelope struct {
	Tasks json.RawMessage `json:"tasks"`
}

type smsRequest struct {
	To    string              `json:"to"`
	Date  string              `json:"date"`
	Tasks []notify.DigestItem `json:"tasks"`
}

type smsResponse struct {
	OK  bool   `json:"ok"`
	Sid string `json:"sid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("client: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// decodeList treats a missing or non-array "tasks" field as an empty list.
func decodeList[T any](raw json.RawMessage) []T {
	out := make([]T, 0)
	if len(raw) == 0 || raw[0] != '[' {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return make([]T, 0)
	}
	return out
}

func (c *Client) LoadTasks(ctx context.Context) ([]model.Task, error) {
	var env tasksEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &env); err != nil {
		return nil, err
	}
	return decodeList[model.Task](env.Tasks), nil
}

func (c *Client) SaveTasks(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return c.do(ctx, http.MethodPost, "/api/tasks", map[string]any{"tasks": tasks}, nil)
}

func (c *Client) LoadLater(ctx context.Context) ([]model.LaterItem, error) {
	var env tasksEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/later", nil, &env); err != nil {
		return nil, err
	}
	return decodeList[model.LaterItem](env.Tasks), nil
}

func (c *Client) SaveLater(ctx context.Context, items []model.LaterItem) error {
	if items == nil {
		items = []model.LaterItem{}
	}
	return c.do(ctx, http.MethodPost, "/api/later", map[string]any{"tasks": items}, nil)
}

// SendSMS asks the server to text the digest for date to `to`.
func (c *Client) SendSMS(ctx context.Context, to, date string, items []notify.DigestItem) (string, error) {
	if items == nil {
		items = []notify.DigestItem{}
	}
	var resp smsResponse
	if err := c.do(ctx, http.MethodPost, "/api/send-sms", smsRequest{To: to, Date: date, Tasks: items}, &resp); err != nil {
		return "", err
	}
	return resp.Sid, nil
}

// Rollover triggers the server's daily rollover.
func (c *Client) Rollover(ctx context.Context) (from, to string, changed int, err error) {
	var resp struct {
		From    string `json:"rolled_from"`
		To      string `json:"rolled_to"`
		Changed int    `json:"changed"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/cron/daily", nil, &resp); err != nil {
		return "", "", 0, err
	}
	return resp.From, resp.To, resp.Changed, nil
}
