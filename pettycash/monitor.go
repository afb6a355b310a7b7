/*
monitor.go - Periodic balance reconciliation

PURPOSE:
  Re-derives every fund's balance from its approved transactions on a timer
  and logs any fund whose stored balance has drifted. The Ledger keeps the
  balance correct incrementally; the monitor is the independent check.

DESIGN:
  - One background goroutine driven by a time.Ticker
  - Runs once immediately on Start, then every Interval
  - Each run is a read-only View per fund; nothing is repaired
  - The last run is kept for display (LastRun)

USAGE:
  monitor := pettycash.NewBalanceMonitor(ledger, time.Minute, log)
  monitor.Start(ctx)
  defer monitor.Stop()

SEE ALSO:
  - ledger.go: VerifyBalance
  - cli/root.go: Started alongside the interactive shell
*/
package pettycash

import (
	"context"
	"sync"
	"time"

	"github.com/warp/pettycash/generic"
	"go.uber.org/zap"
)

// MonitorRun is the outcome of one reconciliation pass.
type MonitorRun struct {
	StartedAt time.Time
	Checked   int
	Drifted   []generic.ID
	Err       error // set when the fund list could not be read
}

// BalanceMonitor periodically runs VerifyBalance over every fund.
type BalanceMonitor struct {
	ledger   *Ledger
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastRun MonitorRun
}

// NewBalanceMonitor returns a stopped monitor. A non-positive interval
// disables Start.
func NewBalanceMonitor(ledger *Ledger, interval time.Duration, log *zap.Logger) *BalanceMonitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &BalanceMonitor{ledger: ledger, interval: interval, log: log}
}

// Start launches the background loop. It returns immediately; calling it
// on a running or disabled monitor does nothing.
func (m *BalanceMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interval <= 0 {
		m.log.Debug("balance monitor disabled")
		return
	}
	if m.cancel != nil {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.run(ctx)

	m.log.Info("balance monitor started", zap.Duration("interval", m.interval))
}

// Stop ends the loop and waits for an in-flight run to finish.
func (m *BalanceMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
	m.log.Info("balance monitor stopped")
}

func (m *BalanceMonitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			m.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce reconciles every fund now and records the result.
func (m *BalanceMonitor) RunOnce(ctx context.Context) MonitorRun {
	run := MonitorRun{StartedAt: m.ledger.now()}

	funds, err := m.ledger.ListFunds(ctx)
	if err != nil {
		m.log.Error("balance monitor could not list funds", zap.Error(err))
		run.Err = err
		m.record(run)
		return run
	}

	for _, f := range funds {
		rec, err := m.ledger.VerifyBalance(ctx, f.ID)
		if err != nil {
			m.log.Warn("balance check failed", zap.String("fund_id", f.ID.String()), zap.Error(err))
			continue
		}
		run.Checked++
		if !rec.Balanced() {
			run.Drifted = append(run.Drifted, f.ID)
		}
	}

	if len(run.Drifted) > 0 {
		m.log.Warn("balance monitor found drift",
			zap.Int("checked", run.Checked), zap.Int("drifted", len(run.Drifted)))
	} else {
		m.log.Debug("balance monitor run complete", zap.Int("checked", run.Checked))
	}
	m.record(run)
	return run
}

// LastRun returns the most recent run, zero before the first.
func (m *BalanceMonitor) LastRun() MonitorRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRun
}

func (m *BalanceMonitor) record(run MonitorRun) {
	m.mu.Lock()
	m.lastRun = run
	m.mu.Unlock()
}
