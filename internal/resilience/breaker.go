package resilience

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type BreakerConfig struct {
	FailureThreshold int
	CoolDown         time.Duration
	Logger           *zap.Logger
}

// Breaker opens after FailureThreshold consecutive failures and lets one
// probe through after CoolDown.
type Breaker struct {
	name      string
	threshold int
	coolDown  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: cfg.FailureThreshold,
		coolDown:  cfg.CoolDown,
		logger:    cfg.Logger,
		now:       time.Now,
	}
	if b.threshold <= 0 {
		b.threshold = 5
	}
	if b.coolDown <= 0 {
		b.coolDown = 30 * time.Second
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

func (b *Breaker) Execute(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err == nil)
	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.current() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.current()
	b.probing = false
	if success {
		b.failures = 0
		if state != StateClosed {
			b.setState(StateClosed)
		}
		return
	}
	b.failures++
	if state == StateHalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		b.setState(StateOpen)
	}
}

func (b *Breaker) current() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.coolDown {
		b.setState(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) setState(s State) {
	if b.state == s {
		return
	}
	prev := b.state
	b.state = s
	b.logger.Info("circuit breaker state changed",
		zap.String("name", b.name),
		zap.String("from", prev.String()),
		zap.String("to", s.String()),
		zap.Int("failures", b.failures),
	)
}
