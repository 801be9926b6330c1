// Package flow tracks in-progress OAuth logins. A flow moves
// waiting_callback -> exchanging -> completed | error and is never removed.
package flow

import (
	"sync"

	"github.com/pysugar/codex-accounts/internal/apperr"
)

// Status is the lifecycle state of a flow.
type Status string

const (
	StatusWaitingCallback Status = "waiting_callback"
	StatusExchanging      Status = "exchanging"
	StatusCompleted       Status = "completed"
	StatusError           Status = "error"
)

// Flow is one login attempt.
type Flow struct {
	ID               string
	State            string
	CodeVerifier     string
	CreatedAt        int64
	AuthorizationURL string
	CallbackURL      *string
	ResultAccountID  *string
	Status           Status
	// Error is set only when Status is StatusError.
	Error string
}

// Terminal reports whether the flow can no longer change.
func (f Flow) Terminal() bool {
	return f.Status == StatusCompleted || f.Status == StatusError
}

func (f Flow) clone() Flow {
	out := f
	if f.CallbackURL != nil {
		v := *f.CallbackURL
		out.CallbackURL = &v
	}
	if f.ResultAccountID != nil {
		v := *f.ResultAccountID
		out.ResultAccountID = &v
	}
	return out
}

const (
	msgNoMatch          = "No active OAuth flow matched this state."
	msgStateMismatch    = "State mismatch. Ensure callback belongs to the current login session."
	msgFlowStateChanged = "State mismatch. Callback belongs to another session."
)

// Registry is the process-wide set of flows. All transitions happen under
// one mutex; callers never hold it across network I/O.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*Flow
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*Flow)}
}

// withLock runs fn under the registry lock and turns a panic into an error.
func (r *Registry) withLock(fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			err = &apperr.LockError{Lock: "oauth flows", Recovered: rec}
		}
	}()
	return fn()
}

// Register adds a new flow. It is stored in waiting_callback regardless of
// the status passed in.
func (r *Registry) Register(f Flow) error {
	return r.withLock(func() error {
		cp := f.clone()
		cp.Status = StatusWaitingCallback
		cp.Error = ""
		r.flows[cp.ID] = &cp
		return nil
	})
}

// Get returns a copy of the flow.
func (r *Registry) Get(id string) (Flow, error) {
	var out Flow
	err := r.withLock(func() error {
		f, ok := r.flows[id]
		if !ok {
			return apperr.NotFound("OAuth flow", id)
		}
		out = f.clone()
		return nil
	})
	return out, err
}

// BeginExchange claims the waiting flow whose state equals state, records the
// observed callback URL and moves it to exchanging. Only one caller can
// claim a given flow; everyone else gets an error and nothing changes.
func (r *Registry) BeginExchange(state, callbackURL string) (Flow, error) {
	var out Flow
	err := r.withLock(func() error {
		for _, f := range r.flows {
			if f.State != state {
				continue
			}
			if f.Status != StatusWaitingCallback {
				return apperr.Inconsistent("OAuth flow is already " + string(f.Status))
			}
			f.CallbackURL = &callbackURL
			f.Status = StatusExchanging
			out = f.clone()
			return nil
		}
		return apperr.Invalid("state", msgNoMatch)
	})
	return out, err
}

// BeginExchangeFor is BeginExchange for a callback pasted against a known
// flow id. A state mismatch is terminal for that flow.
func (r *Registry) BeginExchangeFor(id, state, callbackURL string) (Flow, error) {
	var out Flow
	err := r.withLock(func() error {
		f, ok := r.flows[id]
		if !ok {
			return apperr.NotFound("OAuth flow", id)
		}
		if f.Status != StatusWaitingCallback {
			return apperr.Inconsistent("OAuth flow is already " + string(f.Status))
		}
		if f.State != state {
			f.Status = StatusError
			f.Error = msgFlowStateChanged
			return apperr.Invalid("state", msgStateMismatch)
		}
		f.CallbackURL = &callbackURL
		f.Status = StatusExchanging
		out = f.clone()
		return nil
	})
	return out, err
}

// Complete marks an exchanging flow as done and links the account.
func (r *Registry) Complete(id, accountID string) error {
	return r.withLock(func() error {
		f, ok := r.flows[id]
		if !ok {
			return apperr.NotFound("OAuth flow", id)
		}
		if f.Status != StatusExchanging {
			return apperr.Inconsistent("OAuth flow is not exchanging")
		}
		f.Status = StatusCompleted
		f.ResultAccountID = &accountID
		return nil
	})
}

// Fail marks an exchanging flow as failed with msg.
func (r *Registry) Fail(id, msg string) error {
	return r.withLock(func() error {
		f, ok := r.flows[id]
		if !ok {
			return apperr.NotFound("OAuth flow", id)
		}
		if f.Terminal() {
			return apperr.Inconsistent("OAuth flow already finished")
		}
		f.Status = StatusError
		f.Error = msg
		return nil
	})
}

// Len returns the number of flows seen since startup.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
