// Package paperapi is the REST client for the Paper Provider and the
// Submission Service, both served by the school backend.
package paperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/submission"
)

var ErrPaperNotFound = errors.New("paper not found")

type Config struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid paper api url: %w", err)
	}

	h := &http.Client{}
	if cfg.Token != "" {
		h = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{baseURL: base, http: h}, nil
}

type paperPayload struct {
	ID              uint              `json:"id"`
	Title           string            `json:"title"`
	ArticleContent  string            `json:"article_content"`
	DurationSeconds *int              `json:"duration_seconds"`
	Assignment      *assignment       `json:"assignment"`
	Questions       []models.Question `json:"questions"`
}

type assignment struct {
	DurationMinutes *int `json:"duration_minutes"`
}

// duration prefers an explicit duration_seconds over the assignment's
// duration_minutes. Missing or non-positive values mean untimed.
func (p paperPayload) duration() *int {
	if p.DurationSeconds != nil && *p.DurationSeconds > 0 {
		d := *p.DurationSeconds
		return &d
	}
	if p.Assignment != nil && p.Assignment.DurationMinutes != nil && *p.Assignment.DurationMinutes > 0 {
		d := *p.Assignment.DurationMinutes * 60
		return &d
	}
	return nil
}

// GetPaper fetches a paper for taking.
func (c *Client) GetPaper(ctx context.Context, paperID uint) (*models.Paper, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("papers", paperID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrPaperNotFound
	}
	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("get paper: %s: %s", res.Status, serverMessage(res.Body))
	}

	var payload paperPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode paper: %w", err)
	}
	return &models.Paper{
		ID:              payload.ID,
		Title:           payload.Title,
		ReferenceText:   payload.ArticleContent,
		DurationSeconds: payload.duration(),
		Questions:       payload.Questions,
	}, nil
}

// Submit posts the encoded answer set. Rejections come back as
// *submission.ServiceError carrying the server's message.
func (c *Client) Submit(ctx context.Context, sub *models.SubmissionRequest) (*models.SubmissionResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("papers", sub.PaperID, "submit"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", submission.ErrServiceUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return nil, &submission.ServiceError{
			Message:    serverMessage(res.Body),
			StatusCode: res.StatusCode,
			Err:        errors.New(res.Status),
		}
	}

	var result models.SubmissionResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, &submission.ServiceError{
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("decode submission result: %w", err),
		}
	}
	if result.SubmissionID == 0 {
		return nil, &submission.ServiceError{
			Message:    result.Message,
			StatusCode: res.StatusCode,
			Err:        submission.ErrNoSubmissionID,
		}
	}
	return &result, nil
}

func (c *Client) endpoint(parts ...interface{}) string {
	segs := make([]string, len(parts))
	for i, p := range parts {
		segs[i] = url.PathEscape(fmt.Sprint(p))
	}
	return c.baseURL.JoinPath(segs...).String()
}

// serverMessage extracts a human-readable error from a JSON error body.
// Both {"message": ...} and {"detail": ...} are understood; detail may be a
// string or a list of {"msg": ...} entries.
func serverMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return detail
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
