package prompt

import (
	"context"
	"sync"
)

// LargeFileThreshold is the size above which adding a file needs confirmation.
const LargeFileThreshold int64 = 10 * 1024 * 1024

// NeedsConfirmation reports whether a file of size bytes must pass the gate.
func NeedsConfirmation(size int64) bool {
	return size > LargeFileThreshold
}

// Candidate describes a file waiting on the gate.
type Candidate struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Gate decides whether an oversized file is added. A false answer discards
// the candidate. Only context errors are returned.
type Gate interface {
	ConfirmLarge(ctx context.Context, c Candidate) (bool, error)
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context, c Candidate) (bool, error)

func (f GateFunc) ConfirmLarge(ctx context.Context, c Candidate) (bool, error) {
	return f(ctx, c)
}

var (
	// AcceptLarge admits every file.
	AcceptLarge Gate = GateFunc(func(ctx context.Context, c Candidate) (bool, error) { return true, ctx.Err() })
	// RejectLarge discards every oversized file.
	RejectLarge Gate = GateFunc(func(ctx context.Context, c Candidate) (bool, error) { return false, ctx.Err() })
)

// ConfirmRequest is a pending gate decision. Resolve answers it; only the
// first call has an effect.
type ConfirmRequest struct {
	Candidate Candidate

	reply chan bool
	once  sync.Once
}

// Resolve answers the request.
func (r *ConfirmRequest) Resolve(ok bool) {
	r.once.Do(func() { r.reply <- ok })
}

// QueueGate turns gate decisions into requests read from Requests. At most
// one request is pending at a time; further callers wait their turn.
type QueueGate struct {
	requests chan *ConfirmRequest
	turn     sync.Mutex
}

// NewQueueGate returns a gate whose requests must be served by the caller.
func NewQueueGate() *QueueGate {
	return &QueueGate{requests: make(chan *ConfirmRequest)}
}

// Requests delivers pending confirmations, one at a time.
func (q *QueueGate) Requests() <-chan *ConfirmRequest {
	return q.requests
}

func (q *QueueGate) ConfirmLarge(ctx context.Context, c Candidate) (bool, error) {
	q.turn.Lock()
	defer q.turn.Unlock()

	req := &ConfirmRequest{Candidate: c, reply: make(chan bool, 1)}
	select {
	case q.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
