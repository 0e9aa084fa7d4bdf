// internal/clients/gym_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"gymnexus/internal/membership"
)

// APIError is a non-2xx answer from the member API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the error code back onto the membership sentinels, falling
// back to the HTTP status when the server sent no known code.
func (e *APIError) Unwrap() error {
	if err := membership.ErrorForCode(e.Code); err != nil {
		return err
	}
	switch e.StatusCode {
	case http.StatusBadRequest:
		return membership.ErrValidation
	case http.StatusNotFound:
		return membership.ErrNotFound
	case http.StatusTooManyRequests:
		return membership.ErrRateLimited
	}
	return nil
}

type GymClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewGymClient(baseURL string, httpClient *http.Client) *GymClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GymClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *GymClient) CreateRegular(ctx context.Context, in membership.RegularInput) (*membership.ResultView, error) {
	var out membership.ResultView
	if err := c.do(ctx, http.MethodPost, "/members/regular", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GymClient) CreatePremium(ctx context.Context, in membership.PremiumInput) (*membership.ResultView, error) {
	var out membership.ResultView
	if err := c.do(ctx, http.MethodPost, "/members/premium", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GymClient) GetMember(ctx context.Context, id int) (*membership.MemberView, error) {
	var out membership.MemberView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/members/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GymClient) ListMembers(ctx context.Context) (*membership.Summary, error) {
	var out membership.Summary
	if err := c.do(ctx, http.MethodGet, "/members", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GymClient) Activate(ctx context.Context, id int) (*membership.ResultView, error) {
	return c.action(ctx, id, "activate", nil)
}

func (c *GymClient) Deactivate(ctx context.Context, id int) (*membership.ResultView, error) {
	return c.action(ctx, id, "deactivate", nil)
}

func (c *GymClient) MarkAttendance(ctx context.Context, id int) (*membership.ResultView, error) {
	return c.action(ctx, id, "attendance", nil)
}

func (c *GymClient) UpgradePlan(ctx context.Context, id int, plan string) (*membership.ResultView, error) {
	return c.action(ctx, id, "upgrade", map[string]string{"plan": plan})
}

func (c *GymClient) RevertRegular(ctx context.Context, id int, reason string) (*membership.ResultView, error) {
	return c.action(ctx, id, "revert-regular", map[string]string{"reason": reason})
}

func (c *GymClient) PayDue(ctx context.Context, id int, amount float64) (*membership.ResultView, error) {
	return c.action(ctx, id, "payments", map[string]float64{"amount": amount})
}

func (c *GymClient) CalculateDiscount(ctx context.Context, id int) (*membership.ResultView, error) {
	return c.action(ctx, id, "discount", nil)
}

func (c *GymClient) RevertPremium(ctx context.Context, id int) (*membership.ResultView, error) {
	return c.action(ctx, id, "revert-premium", nil)
}

// SaveSnapshot returns the location the server wrote to.
func (c *GymClient) SaveSnapshot(ctx context.Context, name string) (string, error) {
	var out struct {
		Location string `json:"location"`
	}
	if err := c.do(ctx, http.MethodPost, "/snapshots", map[string]string{"name": name}, &out); err != nil {
		return "", err
	}
	return out.Location, nil
}

func (c *GymClient) LoadSnapshot(ctx context.Context, location string) (*membership.Summary, error) {
	var out membership.Summary
	if err := c.do(ctx, http.MethodPost, "/snapshots/load", map[string]string{"location": location}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GymClient) action(ctx context.Context, id int, name string, body any) (*membership.ResultView, error) {
	if body == nil {
		body = struct{}{}
	}
	var out membership.ResultView
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/members/%d/%s", id, name), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *GymClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil && !errors.Is(err, io.EOF) {
			apiErr.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Error}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
