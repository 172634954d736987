// Package channel implements the correlated request/response exchange between callers and the core service.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout is how long a caller waits for the reply of a request.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when no reply arrived before the deadline.
	ErrTimeout = errors.New("channel timeout")
	// ErrProtocol is returned when a channel is replied to twice.
	ErrProtocol = errors.New("channel protocol error")
	// ErrClosed is returned when a closed channel is used.
	ErrClosed = errors.New("channel closed")
)

type Type string

const (
	TypeLookupWord        Type = "LOOKUP_WORD"
	TypeSaveTranslation   Type = "SAVE_TRANSLATION"
	TypeGetTranslations   Type = "GET_TRANSLATIONS"
	TypeDeleteTranslation Type = "DELETE_TRANSLATION"
)

func (t Type) Valid() bool {
	switch t {
	case TypeLookupWord, TypeSaveTranslation, TypeGetTranslations, TypeDeleteTranslation:
		return true
	}
	return false
}

type Request struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v.
func (r Request) Decode(v any) error {
	if len(r.Payload) == 0 {
		return fmt.Errorf("%w: decode %s payload: empty payload", ErrProtocol, r.Type)
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("%w: decode %s payload: %w", ErrProtocol, r.Type, err)
	}
	return nil
}

type Response struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// DecodeData unmarshals the response data into v.
func (r Response) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// OK builds a successful response carrying data.
func OK(data any) (Response, error) {
	raw, err := marshal(data)
	if err != nil {
		return Response{}, err
	}
	return Response{Success: true, Data: raw}, nil
}

// Fail builds a failed response. data may carry what the caller needs to render the failure.
func Fail(cause error, data any) Response {
	raw, err := marshal(data)
	if err != nil {
		raw = nil
	}
	return Response{Success: false, Error: cause.Error(), Data: raw}
}

func marshal(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response data: %w", err)
	}
	return raw, nil
}

// Channel carries one request and at most one reply. It goes from open to closed exactly once.
type Channel struct {
	request  Request
	deadline time.Time
	reply    chan Response
	done     chan struct{}

	mu      sync.Mutex
	replied bool
	awaited bool
	closed  bool
}

func newChannel(request Request, deadline time.Time) *Channel {
	return &Channel{
		request:  request,
		deadline: deadline,
		reply:    make(chan Response, 1),
		done:     make(chan struct{}),
	}
}

func (c *Channel) Request() Request {
	return c.request
}

// Done is closed once the caller stopped waiting.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Reply delivers resp to the caller. Only the first reply is delivered.
func (c *Channel) Reply(resp Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replied {
		return fmt.Errorf("%w: %s %s already replied", ErrProtocol, c.request.Type, c.request.ID)
	}
	if c.closed {
		return ErrClosed
	}
	c.replied = true
	resp.ID = c.request.ID
	c.reply <- resp
	return nil
}

// Await waits for the reply until the deadline of the channel, then closes it.
func (c *Channel) Await(ctx context.Context) (Response, error) {
	c.mu.Lock()
	if c.awaited || c.closed {
		c.mu.Unlock()
		return Response{}, ErrClosed
	}
	c.awaited = true
	c.mu.Unlock()
	defer c.Close()

	timer := time.NewTimer(time.Until(c.deadline))
	defer timer.Stop()

	select {
	case resp := <-c.reply:
		return resp, nil
	case <-timer.C:
		return Response{}, fmt.Errorf("%w: %s %s", ErrTimeout, c.request.Type, c.request.ID)
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Close discards any later reply. It is safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
