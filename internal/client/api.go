package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
	"github.com/taptosell/marketplace-workflow/internal/domain/workflow"
)

// RemoteAPI is the server surface a syncing caller depends on
type RemoteAPI interface {
	GetRecord(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Record, error)
	ListQueue(ctx context.Context, kind workflow.Kind) ([]workflow.Record, error)
	Transition(ctx context.Context, kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error)
	Promote(ctx context.Context, itemID int64) (int64, error)
}

// HTTPClient is the RemoteAPI implementation over the workflow HTTP API.
// Every request carries the actor headers and a fresh request ID.
type HTTPClient struct {
	baseURL string
	actor   actor.Actor
	client  *http.Client
}

// NewHTTPClient creates a client for the given base URL acting as act
func NewHTTPClient(baseURL string, act actor.Actor, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{baseURL: baseURL, actor: act, client: client}
}

var _ RemoteAPI = (*HTTPClient)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// errorFromCode maps the API's machine-readable error codes back onto the
// workflow sentinels so callers can apply the usual retry policy.
func errorFromCode(code, msg string) error {
	var sentinel error
	switch code {
	case "not_found":
		sentinel = workflow.ErrNotFound
	case "forbidden":
		sentinel = workflow.ErrForbidden
	case "illegal_transition":
		sentinel = workflow.ErrIllegalTransition
	case "missing_reason":
		sentinel = workflow.ErrMissingReason
	case "conflict":
		sentinel = workflow.ErrConflict
	case "store_unavailable":
		sentinel = workflow.ErrStoreUnavailable
	default:
		return fmt.Errorf("server error: %s", msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", strconv.FormatInt(c.actor.ID, 10))
	req.Header.Set("X-Actor-Role", string(c.actor.Role))
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutcomeUnknown, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrOutcomeUnknown, err)
	}
	if !env.Success {
		return errorFromCode(env.Code, env.Error)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Record, error) {
	var rec workflow.Record
	path := fmt.Sprintf("/api/records/%s/%d", kind, id)
	if err := c.do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) ListQueue(ctx context.Context, kind workflow.Kind) ([]workflow.Record, error) {
	var records []workflow.Record
	path := fmt.Sprintf("/api/queue/%s", kind)
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) Transition(ctx context.Context, kind workflow.Kind, id int64, action workflow.Action, reason string) (*workflow.Record, error) {
	var rec workflow.Record
	path := fmt.Sprintf("/api/records/%s/%d/transition", kind, id)
	body := map[string]string{"action": action.String(), "reason": reason}
	if err := c.do(ctx, http.MethodPost, path, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Promote(ctx context.Context, itemID int64) (int64, error) {
	var out struct {
		ProductID int64 `json:"product_id"`
	}
	path := fmt.Sprintf("/api/inventory/%d/promote", itemID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return 0, err
	}
	return out.ProductID, nil
}
