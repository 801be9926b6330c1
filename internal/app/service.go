// Package app wires the flow registry, callback listener, token exchange and
// account store into the operations exposed by the CLI and control API.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pysugar/codex-accounts/internal/auth/callback"
	"github.com/pysugar/codex-accounts/internal/auth/codex"
	"github.com/pysugar/codex-accounts/internal/auth/flow"
	"github.com/pysugar/codex-accounts/internal/ide"
	"github.com/pysugar/codex-accounts/internal/metrics"
	"github.com/pysugar/codex-accounts/internal/models"
	"github.com/pysugar/codex-accounts/internal/netproxy"
	"github.com/pysugar/codex-accounts/internal/store"
	"github.com/pysugar/codex-accounts/internal/upstream"
)

// refreshConcurrency caps parallel usage requests in RefreshAllQuotas.
const refreshConcurrency = 4

// HTTPClientFunc builds a client for one outbound call.
type HTTPClientFunc func(timeout time.Duration, proxy *models.ProxyEntry) *http.Client

// ProbeFunc measures proxy reachability.
type ProbeFunc func(ctx context.Context, host string, port uint16) (time.Duration, error)

// Options configures a Service. Store is required; everything else has a
// production default.
type Options struct {
	Store    *store.Store
	Flows    *flow.Registry
	OAuth    *codex.Client
	Reloader ide.Reloader
	Metrics  *metrics.Metrics

	// AuthFile is the credential export path; empty means ~/.codex/auth.json.
	AuthFile string
	// CallbackAddr is where the callback listener binds.
	CallbackAddr string

	HTTPClient HTTPClientFunc
	Probe      ProbeFunc
	Now        func() time.Time
}

// Service is the shared state container. Construct one per process.
type Service struct {
	store    *store.Store
	flows    *flow.Registry
	oauth    *codex.Client
	reloader ide.Reloader
	metrics  *metrics.Metrics
	listener *callback.Server

	authFile   string
	httpClient HTTPClientFunc
	probe      ProbeFunc
	now        func() time.Time
}

// New builds a Service. The callback listener is created but not bound
// until the first StartFlow.
func New(opts Options) *Service {
	s := &Service{
		store:      opts.Store,
		flows:      opts.Flows,
		oauth:      opts.OAuth,
		reloader:   opts.Reloader,
		metrics:    opts.Metrics,
		authFile:   opts.AuthFile,
		httpClient: opts.HTTPClient,
		probe:      opts.Probe,
		now:        opts.Now,
	}
	if s.flows == nil {
		s.flows = flow.NewRegistry()
	}
	if s.oauth == nil {
		s.oauth = codex.DefaultClient
	}
	if s.reloader == nil {
		s.reloader = ide.NewReloader()
	}
	if s.httpClient == nil {
		s.httpClient = upstream.NewHTTPClient
	}
	if s.probe == nil {
		s.probe = netproxy.Probe
	}
	if s.now == nil {
		s.now = time.Now
	}

	addr := opts.CallbackAddr
	if addr == "" {
		addr = codex.CallbackAddr
	}
	s.listener = callback.NewServer(addr, s.flows, s, s.metrics)

	if snap, err := s.store.Snapshot(); err == nil {
		s.metrics.SetAccounts(len(snap.Accounts))
	}
	return s
}

// Listener exposes the callback listener, mainly so tests can find its address.
func (s *Service) Listener() *callback.Server {
	return s.listener
}

// State returns a snapshot of the aggregate.
func (s *Service) State() (models.AppData, error) {
	return s.store.Snapshot()
}

// StoragePath returns where the aggregate is persisted.
func (s *Service) StoragePath() string {
	return s.store.Location()
}

func (s *Service) nowUnix() int64 {
	return s.now().Unix()
}

// upstreamSnapshot reads the limits base URL and active proxy under the data lock.
func (s *Service) upstreamSnapshot() (string, *models.ProxyEntry, error) {
	var base string
	var proxy *models.ProxyEntry
	err := s.store.View(func(d *models.AppData) error {
		base = d.LimitsBaseURL
		proxy = d.ActiveProxy()
		return nil
	})
	return base, proxy, err
}
