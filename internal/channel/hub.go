package channel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Caller sends a request and waits for its reply.
type Caller interface {
	Call(ctx context.Context, typ Type, payload any) (Response, error)
}

// Hub hands channels opened by callers to the core service.
type Hub struct {
	requests chan *Channel
	timeout  time.Duration
	newID    func() string
	now      func() time.Time

	closeOnce sync.Once
	done      chan struct{}
}

func NewHub(timeout time.Duration) *Hub {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Hub{
		requests: make(chan *Channel),
		timeout:  timeout,
		newID:    uuid.NewString,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Requests is the stream of channels the core service replies to.
func (h *Hub) Requests() <-chan *Channel {
	return h.requests
}

// Open allocates a correlation id and delivers a new channel to the core service.
func (h *Hub) Open(ctx context.Context, typ Type, payload any) (*Channel, error) {
	raw, err := marshal(payload)
	if err != nil {
		return nil, err
	}
	return h.Submit(ctx, Request{Type: typ, Payload: raw})
}

// Submit delivers req, keeping its id when the caller already assigned one.
// Delivery counts against the timeout of the channel.
func (h *Hub) Submit(ctx context.Context, req Request) (*Channel, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown request type %q", ErrProtocol, req.Type)
	}
	if req.ID == "" {
		req.ID = h.newID()
	}

	ch := newChannel(req, h.now().Add(h.timeout))
	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case h.requests <- ch:
		return ch, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s %s was not accepted", ErrTimeout, req.Type, req.ID)
	case <-h.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Call opens a channel and waits for its reply.
func (h *Hub) Call(ctx context.Context, typ Type, payload any) (Response, error) {
	ch, err := h.Open(ctx, typ, payload)
	if err != nil {
		return Response{}, err
	}
	return ch.Await(ctx)
}

// Do is Call for a request that already went through a transport.
func (h *Hub) Do(ctx context.Context, req Request) (Response, error) {
	ch, err := h.Submit(ctx, req)
	if err != nil {
		return Response{}, err
	}
	return ch.Await(ctx)
}

// Close makes every later Open fail with ErrClosed.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
