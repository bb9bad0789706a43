package breaker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the circuit breaker state.
type State int

const (
	// Closed admits all calls.
	Closed State = iota
	// Open short-circuits all calls until the cooldown elapses.
	Open
	// HalfOpen admits a limited number of probe calls.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Settings tunes a Breaker.
type Settings struct {
	// FailureThreshold trips the breaker when the failure rate over the
	// rolling window reaches it, e.g. 0.5.
	FailureThreshold float64
	// MinSamples is the smallest number of recorded calls before the
	// failure rate is considered meaningful.
	MinSamples int
	// WindowSize caps the rolling window of recorded outcomes.
	WindowSize int
	// Cooldown is how long the breaker stays Open before probing.
	Cooldown time.Duration
	// Probes is how many consecutive probe successes close the breaker.
	Probes int
}

func (s Settings) withDefaults() Settings {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = 0.5
	}
	if s.MinSamples <= 0 {
		s.MinSamples = 5
	}
	if s.WindowSize <= 0 {
		s.WindowSize = 20
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	if s.Probes <= 0 {
		s.Probes = 1
	}
	return s
}

// Breaker is an explicit circuit breaker state machine for one class of
// outbound operation. It is shared by every caller of that operation and
// is safe for concurrent use. The transport layer asks Allow before each
// attempt and reports the outcome with Success or Failure.
type Breaker struct {
	log      zerolog.Logger
	settings Settings
	now      func() time.Time

	mu           sync.Mutex
	state        State
	window       []bool // true = failure
	openedAt     time.Time
	probesInUse  int
	probesPassed int
}

// New creates a Closed breaker named after its operation class.
func New(log zerolog.Logger, name string, settings Settings) *Breaker {
	return &Breaker{
		log:      log.With().Str("module", "breaker").Str("operation", name).Logger(),
		settings: settings.withDefaults(),
		now:      time.Now,
		state:    Closed,
	}
}

// Allow reports whether a call may proceed. In the Open state it flips
// to HalfOpen once the cooldown has elapsed; in HalfOpen it admits at
// most Probes in-flight probe calls.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true

	case Open:
		if b.now().Sub(b.openedAt) < b.settings.Cooldown {
			return false
		}
		b.transition(HalfOpen)
		b.probesInUse = 1
		return true

	case HalfOpen:
		if b.probesInUse >= b.settings.Probes {
			return false
		}
		b.probesInUse++
		return true
	}
	return false
}

// Success records a successful call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.probesPassed++
		if b.probesPassed >= b.settings.Probes {
			b.window = nil
			b.transition(Closed)
		}
	case Closed:
		b.record(false)
	}
}

// Cancel releases an admitted call that never reached the provider,
// e.g. when the caller's context expires while waiting on the rate
// limiter. A cancelled HalfOpen probe reopens the circuit with a fresh
// cooldown; without that the probe slot would stay occupied and the
// breaker would refuse calls forever. In Closed no outcome is recorded.
func (b *Breaker) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen {
		b.open()
	}
}

// Failure records a failed call. In HalfOpen a single probe failure
// reopens the circuit.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.open()
	case Closed:
		b.record(true)
		if b.tripped() {
			b.open()
		}
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ForceOpen trips the breaker immediately. Used by tests and operational
// tooling to take the provider offline deliberately.
func (b *Breaker) ForceOpen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open()
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.window = nil
	b.probesInUse = 0
	b.probesPassed = 0
	b.transition(Open)
}

func (b *Breaker) record(failure bool) {
	b.window = append(b.window, failure)
	if len(b.window) > b.settings.WindowSize {
		b.window = b.window[len(b.window)-b.settings.WindowSize:]
	}
}

func (b *Breaker) tripped() bool {
	if len(b.window) < b.settings.MinSamples {
		return false
	}
	failures := 0
	for _, f := range b.window {
		if f {
			failures++
		}
	}
	return float64(failures)/float64(len(b.window)) >= b.settings.FailureThreshold
}

func (b *Breaker) transition(next State) {
	if b.state == next {
		return
	}
	b.log.Warn().Str("from", b.state.String()).Str("to", next.String()).Msg("circuit state change")
	b.state = next
}
