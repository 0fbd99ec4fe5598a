// Package health implements liveness and readiness probes with
// Kubernetes-style flap damping: a probe must fail FailAfter times in a
// row to go unhealthy, and pass PassAfter times in a row to recover.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// ProbeFunc reports the health of one component. A nil return means
// healthy.
type ProbeFunc func(ctx context.Context) error

// Probe describes a single registered check.
type Probe struct {
	// Name identifies the probe in failure reports.
	Name string
	// Timeout bounds a single probe execution. Defaults to 5s.
	Timeout time.Duration
	// Run is the probe function.
	Run ProbeFunc
	// FailAfter is the consecutive-failure count that marks the probe
	// unhealthy. Defaults to 3.
	FailAfter int
	// PassAfter is the consecutive-success count that marks the probe
	// healthy again. Defaults to 1.
	PassAfter int
}

func (p *Probe) applyDefaults() {
	if p.Timeout <= 0 {
		p.Timeout = 5 * time.Second
	}
	if p.FailAfter <= 0 {
		p.FailAfter = 3
	}
	if p.PassAfter <= 0 {
		p.PassAfter = 1
	}
}

// probeState is the runtime state of one probe. The loop goroutine is
// the only writer of the streak counters; ok and err are shared with
// HTTP handlers under mu.
type probeState struct {
	probe Probe

	mu       sync.Mutex
	ok       bool
	err      error
	failures int
	passes   int
}

func (s *probeState) observe(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
	if err != nil {
		s.passes = 0
		s.failures++
		if s.failures >= s.probe.FailAfter {
			s.ok = false
		}
		return
	}
	s.failures = 0
	s.passes++
	if s.passes >= s.probe.PassAfter {
		s.ok = true
	}
}

func (s *probeState) status() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ok, s.err
}

func (s *probeState) execute(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.probe.Timeout)
	defer cancel()
	s.observe(s.probe.Run(ctx))
}

// Monitor owns a set of liveness and readiness probes and serves the
// /livez and /readyz endpoints over them.
type Monitor struct {
	mu    sync.Mutex
	live  []*probeState
	ready []*probeState

	readyFlag bool
	cancel    context.CancelFunc
}

// NewMonitor returns a Monitor in the not-ready state. Call SetReady(true)
// once initialization completes.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// RegisterLiveness adds a liveness probe. Probes start out healthy.
func (m *Monitor) RegisterLiveness(p Probe) {
	p.applyDefaults()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live = append(m.live, &probeState{probe: p, ok: true})
}

// RegisterReadiness adds a readiness probe. Probes start out healthy.
func (m *Monitor) RegisterReadiness(p Probe) {
	p.applyDefaults()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = append(m.ready, &probeState{probe: p, ok: true})
}

// Start launches one goroutine per registered probe, each executing at
// the given interval until Stop is called or ctx is cancelled. Register
// all probes before calling Start.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cancel = cancel
	states := append(append([]*probeState(nil), m.live...), m.ready...)
	m.mu.Unlock()

	for _, s := range states {
		go func(s *probeState) {
			s.execute(ctx)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.execute(ctx)
				}
			}
		}(s)
	}
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Flip it to false during
// graceful shutdown so load balancers drain traffic before the listener
// closes.
func (m *Monitor) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readyFlag = ready
}

// Ready reports whether the manual gate is open and every readiness
// probe is passing.
func (m *Monitor) Ready() bool {
	m.mu.Lock()
	ready := m.readyFlag
	states := append([]*probeState(nil), m.ready...)
	m.mu.Unlock()

	if !ready {
		return false
	}
	for _, s := range states {
		if ok, _ := s.status(); !ok {
			return false
		}
	}
	return true
}

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveHandler serves the liveness endpoint: 200 when all liveness
// probes pass, 503 with per-probe failure messages otherwise.
func (m *Monitor) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		states := append([]*probeState(nil), m.live...)
		m.mu.Unlock()

		report(w, failures(states))
	}
}

// ReadyHandler serves the readiness endpoint. The manual gate counts as
// a failing check while closed.
func (m *Monitor) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		ready := m.readyFlag
		states := append([]*probeState(nil), m.ready...)
		m.mu.Unlock()

		failed := failures(states)
		if !ready {
			failed["_gate"] = "service is not ready"
		}
		report(w, failed)
	}
}

func failures(states []*probeState) map[string]string {
	failed := make(map[string]string)
	for _, s := range states {
		ok, err := s.status()
		if ok {
			continue
		}
		msg := "probe is unhealthy"
		if err != nil {
			msg = err.Error()
		}
		failed[s.probe.Name] = msg
	}
	return failed
}

func report(w http.ResponseWriter, failed map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	body := probeReport{Status: "ok"}
	code := http.StatusOK
	if len(failed) > 0 {
		body.Status = "unhealthy"
		body.Checks = failed
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
