// Package callback runs the local listener the provider redirects to after
// the user signs in. It binds once per process on a fixed address.
package callback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pysugar/codex-accounts/internal/auth/codex"
	"github.com/pysugar/codex-accounts/internal/auth/flow"
	"github.com/pysugar/codex-accounts/internal/logging"
	"github.com/pysugar/codex-accounts/internal/metrics"
)

// Completer finishes a flow that the listener has claimed. It is responsible
// for moving the flow to completed or error.
type Completer interface {
	CompleteFlow(ctx context.Context, f flow.Flow, code string) error
}

// Server is the callback listener.
type Server struct {
	addr      string
	flows     *flow.Registry
	completer Completer
	metrics   *metrics.Metrics

	started atomic.Bool
	// handling is serialized: one callback at a time
	mu sync.Mutex

	srv      *http.Server
	bound    chan struct{}
	boundErr error
	listener net.Listener
}

// NewServer returns an unstarted listener for addr.
func NewServer(addr string, flows *flow.Registry, completer Completer, m *metrics.Metrics) *Server {
	s := &Server{
		addr:      addr,
		flows:     flows,
		completer: completer,
		metrics:   m,
		bound:     make(chan struct{}),
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router serving the callback path.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(getOnly)
	r.Get(codex.CallbackPath, s.handleCallback)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writePage(w, http.StatusNotFound, "Not Found", "This endpoint is only used for OAuth callback.")
	})
	return r
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writePage(w, http.StatusMethodNotAllowed, "Method Not Allowed", "Only GET is supported for OAuth callback.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EnsureStarted binds and serves in the background on the first call.
// Later calls are no-ops and return false. A bind failure is logged once
// and not retried.
func (s *Server) EnsureStarted() bool {
	if !s.started.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		ln, err := net.Listen("tcp", s.addr)
		if err != nil {
			log.Printf("❌ [OAuth] Callback listener failed to bind on %s: %v", s.addr, err)
			s.boundErr = err
			close(s.bound)
			return
		}
		s.listener = ln
		close(s.bound)
		log.Printf("🔐 [OAuth] Callback listener on http://%s%s", ln.Addr(), codex.CallbackPath)

		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️ [OAuth] Callback listener stopped: %v", err)
		}
	}()
	return true
}

// WaitBound blocks until the bind attempt finished and returns the bound
// address or the bind error.
func (s *Server) WaitBound(ctx context.Context) (net.Addr, error) {
	if !s.started.Load() {
		return nil, errors.New("callback listener not started")
	}
	select {
	case <-s.bound:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if s.boundErr != nil {
		return nil, s.boundErr
	}
	return s.listener.Addr(), nil
}

// Close stops the listener. It is not restartable.
func (s *Server) Close() error {
	return s.srv.Close()
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := logging.WithRequestID(r.Context(), logging.GenerateRequestID())
	reqID := logging.GetRequestID(ctx)

	q := r.URL.Query()
	if !q.Has("code") {
		s.metrics.RecordCallback("bad_request")
		writePage(w, http.StatusBadRequest, "Callback Error", "Query does not contain OAuth code.")
		return
	}
	if !q.Has("state") {
		s.metrics.RecordCallback("bad_request")
		writePage(w, http.StatusBadRequest, "Callback Error", "Query does not contain OAuth state.")
		return
	}

	callbackURL := "http://localhost:1455" + r.URL.RequestURI()
	f, err := s.flows.BeginExchange(q.Get("state"), callbackURL)
	if err != nil {
		log.Printf("⚠️ [OAuth] [%s] Callback rejected: %v", reqID, err)
		s.metrics.RecordCallback("unmatched")
		writePage(w, http.StatusBadRequest, "Callback Error", "No active OAuth flow matched this state.")
		return
	}

	log.Printf("🔄 [OAuth] [%s] Callback matched flow %s, exchanging code", reqID, f.ID)
	if err := s.completer.CompleteFlow(ctx, f, q.Get("code")); err != nil {
		log.Printf("❌ [OAuth] [%s] Flow %s failed: %v", reqID, f.ID, err)
		s.metrics.RecordCallback("exchange_failed")
		writePage(w, http.StatusBadRequest, "OAuth Failed", fmt.Sprintf("Token exchange failed: %v", err))
		return
	}

	log.Printf("✅ [OAuth] [%s] Flow %s completed", reqID, f.ID)
	s.metrics.RecordCallback("ok")
	writePage(w, http.StatusOK, "Login Completed", "OAuth completed successfully. You can return to the app now.")
}
