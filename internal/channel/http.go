package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"resty.dev/v3"
)

const (
	// Path is the endpoint of the HTTP transport.
	Path = "/channel"

	requestIDHeader = "X-Request-Id"
)

// NewHTTPHandler exposes hub to callers in other processes.
func NewHTTPHandler(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+Path, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResponse(w, http.StatusBadRequest, Response{Error: fmt.Sprintf("decode request: %v", err)})
			return
		}
		if req.ID == "" {
			req.ID = r.Header.Get(requestIDHeader)
		}

		resp, err := hub.Do(r.Context(), req)
		switch {
		case err == nil:
			writeResponse(w, http.StatusOK, resp)
		case errors.Is(err, ErrTimeout):
			writeResponse(w, http.StatusGatewayTimeout, Response{ID: req.ID, Error: err.Error()})
		case errors.Is(err, ErrProtocol):
			writeResponse(w, http.StatusBadRequest, Response{ID: req.ID, Error: err.Error()})
		case errors.Is(err, ErrClosed):
			writeResponse(w, http.StatusServiceUnavailable, Response{ID: req.ID, Error: err.Error()})
		default:
			slog.Default().Warn("channel request aborted", "id", req.ID, "type", req.Type, "error", err)
			writeResponse(w, http.StatusServiceUnavailable, Response{ID: req.ID, Error: err.Error()})
		}
	})
	return mux
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if resp.ID != "" {
		w.Header().Set(requestIDHeader, resp.ID)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Default().Warn("failed to write channel response", "error", err)
	}
}

// HTTPCaller calls a hub served by NewHTTPHandler.
type HTTPCaller struct {
	httpClient *resty.Client
	timeout    time.Duration
	newID      func() string
}

func NewHTTPCaller(baseURL string, timeout time.Duration) *HTTPCaller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &HTTPCaller{
		httpClient: client,
		timeout:    timeout,
		newID:      uuid.NewString,
	}
}

func (c *HTTPCaller) Close() error {
	return c.httpClient.Close()
}

// Call sends one request and waits at most the channel timeout for its reply.
func (c *HTTPCaller) Call(ctx context.Context, typ Type, payload any) (Response, error) {
	raw, err := marshal(payload)
	if err != nil {
		return Response{}, err
	}
	req := Request{ID: c.newID(), Type: typ, Payload: raw}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp Response
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, req.ID).
		SetBody(req).
		SetResult(&resp).
		Post(Path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, fmt.Errorf("%w: %s %s", ErrTimeout, typ, req.ID)
		}
		return Response{}, fmt.Errorf("send %s request: %w", typ, err)
	}

	if res.IsError() {
		_ = json.Unmarshal([]byte(res.String()), &resp)
	}
	switch res.StatusCode() {
	case http.StatusOK:
	case http.StatusGatewayTimeout:
		return Response{}, fmt.Errorf("%w: %s %s", ErrTimeout, typ, req.ID)
	case http.StatusBadRequest:
		return Response{}, fmt.Errorf("%w: %s", ErrProtocol, resp.Error)
	default:
		return Response{}, fmt.Errorf("send %s request: status %d: %s", typ, res.StatusCode(), resp.Error)
	}
	if resp.ID != req.ID {
		return Response{}, fmt.Errorf("%w: reply %q does not match request %q", ErrProtocol, resp.ID, req.ID)
	}
	return resp, nil
}
