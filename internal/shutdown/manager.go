// Package shutdown cancels in-flight work on SIGINT/SIGTERM and runs
// registered cleanups in reverse order.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"edge-tuner/internal/logger"
)

const component = "ShutdownManager"

// Timeout bounds each cleanup; a slow cleanup is logged and abandoned.
var Timeout = 10 * time.Second

type cleanup struct {
	name string
	fn   func()
}

type Manager struct {
	mu       sync.Mutex
	cleanups []cleanup
	logger   logger.Logger
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	stop     func()
}

func NewManager(parent context.Context, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		logger: log,
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		stop:   func() {},
	}
}

// Register adds fn to run on Shutdown. Later registrations run first.
func (m *Manager) Register(name string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups = append(m.cleanups, cleanup{name: name, fn: fn})
}

// Listen cancels Context on the first interrupt or termination signal.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	m.mu.Lock()
	m.stop = func() { signal.Stop(sigChan) }
	m.mu.Unlock()

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info(component, "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.cancel()
		case <-m.done:
		}
	}()
}

// Shutdown cancels Context and runs every cleanup once.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.stop()
	m.cancel()

	for i := len(m.cleanups) - 1; i >= 0; i-- {
		c := m.cleanups[i]

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			c.fn()
		}()

		select {
		case <-finished:
		case <-time.After(Timeout):
			m.logger.Warning(component, "cleanup timeout", map[string]interface{}{
				"cleanup": c.name,
			})
		}
	}

	m.logger.Debug(component, "shutdown sequence completed", map[string]interface{}{
		"cleanups": len(m.cleanups),
	})
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
