// Package bridge is the only channel between the overlay context and
// the orchestrator context. It carries opaque {type, payload} messages,
// correlates responses to the call site that issued them, and does no
// business logic. There is no shared memory across it: both sides see
// only serialized payloads.
//
// Every call eventually resolves: with a response, with a structured
// failure, or — when the sender's context expires first — as a timeout
// on the sender side. A late response for a request nobody is waiting
// on anymore is dropped.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"actionnerd/internal/logging"
)

var (
	// ErrClosed is returned for calls against a closed bridge.
	ErrClosed = errors.New("bridge closed")
	// ErrTimeout is returned when the sender's wait expires before a
	// response arrives. The orchestrator may still be working; its
	// eventual answer is discarded.
	ErrTimeout = errors.New("bridge call timed out")
)

// Message is the unit carried across the bridge.
type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Handler services one request at a time on the background side.
type Handler interface {
	Handle(ctx context.Context, typ string, payload json.RawMessage) (json.RawMessage, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, typ string, payload json.RawMessage) (json.RawMessage, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, typ string, payload json.RawMessage) (json.RawMessage, error) {
	return f(ctx, typ, payload)
}

// Bridge connects exactly one caller side and one serving side.
type Bridge struct {
	mu      sync.Mutex
	pending map[string]chan Message
	closed  bool

	requests  chan Message
	responses chan Message
	done      chan struct{}
}

// New creates a bridge and starts its response dispatcher.
func New() *Bridge {
	b := &Bridge{
		pending:   make(map[string]chan Message),
		requests:  make(chan Message, 16),
		responses: make(chan Message, 16),
		done:      make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Call sends a request and waits for the correlated response. The
// caller's ctx bounds the wait; expiry is reported as ErrTimeout.
func (b *Bridge) Call(ctx context.Context, typ string, payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := Message{ID: uuid.NewString(), Type: typ, Payload: raw}
	respCh := make(chan Message, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.pending[msg.ID] = respCh
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, msg.ID)
		b.mu.Unlock()
	}()

	select {
	case b.requests <- msg:
	case <-ctx.Done():
		return nil, ErrTimeout
	case <-b.done:
		return nil, ErrClosed
	}

	select {
	case resp := <-respCh:
		if resp.Error != "" {
			return nil, errors.New(resp.Error)
		}
		return resp.Payload, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	case <-b.done:
		return nil, ErrClosed
	}
}

// Serve processes requests one at a time until ctx is cancelled or the
// bridge closes. This sequential loop is what makes the background
// context single-threaded: handlers never overlap.
func (b *Bridge) Serve(ctx context.Context, h Handler) {
	log := logging.Get(logging.CategoryBridge)
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case msg := <-b.requests:
			resp := Message{ID: msg.ID, Type: msg.Type}
			payload, err := h.Handle(ctx, msg.Type, msg.Payload)
			if err != nil {
				resp.Error = err.Error()
			} else {
				resp.Payload = payload
			}

			select {
			case b.responses <- resp:
			case <-ctx.Done():
				return
			case <-b.done:
				return
			}
			log.Debug("request served",
				zap.String("type", msg.Type),
				zap.Bool("failed", resp.Error != ""))
		}
	}
}

// dispatch routes responses back to waiting callers. Responses whose
// caller already gave up are dropped.
func (b *Bridge) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case resp := <-b.responses:
			b.mu.Lock()
			ch, ok := b.pending[resp.ID]
			if ok {
				delete(b.pending, resp.ID)
			}
			b.mu.Unlock()
			if ok {
				ch <- resp
			} else {
				logging.Get(logging.CategoryBridge).Debug("late response dropped",
					zap.String("type", resp.Type))
			}
		}
	}
}

// Close tears the bridge down. In-flight calls resolve with ErrClosed.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}
