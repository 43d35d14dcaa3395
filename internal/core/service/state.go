package service

import (
	"errors"
	"sync"

	"pixbox/internal/core/domain"
)

type State string

const (
	StateIdle          State = "idle"
	StateInputSelected State = "input_selected"
	StateProcessing    State = "processing"
	StateSucceeded     State = "succeeded"
	StateFailed        State = "failed"
)

// ErrBusy is returned when an invoke arrives while an operation is still
// processing. The attempt is rejected, not queued.
var ErrBusy = errors.New("an operation is already in progress")

// ErrStale marks a result that arrived after the machine moved on. Stale
// results are discarded, never applied to state.
var ErrStale = errors.New("result superseded by a newer operation")

// machine is the state holder shared by all orchestrators. One machine
// permits exactly one in-flight operation; each accepted operation gets a
// token so a late completion cannot overwrite a newer one.
type machine struct {
	mu        sync.Mutex
	state     State
	token     uint64
	lastError string
}

func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// LastError is the single user-facing error slot. The latest failure
// replaces any prior message, success clears it.
func (m *machine) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastError
}

// selectInput records that validated input was accepted. It is a no-op while
// processing; validation failures never reach this point.
func (m *machine) selectInput() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateProcessing {
		return
	}
	m.state = StateInputSelected
}

// begin moves the machine into processing and hands out the operation token.
// A machine already processing rejects the attempt.
func (m *machine) begin() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateProcessing {
		return 0, ErrBusy
	}

	m.token++
	m.state = StateProcessing
	return m.token, nil
}

// finish applies the outcome of the operation identified by token. It
// reports false, leaving state untouched, when the token is no longer
// current.
func (m *machine) finish(token uint64, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token != m.token || m.state != StateProcessing {
		return false
	}

	if err != nil {
		m.state = StateFailed
		m.lastError = domain.UserMessage(err)
	} else {
		m.state = StateSucceeded
		m.lastError = ""
	}

	return true
}

// reportError surfaces a failure without leaving the current state, used
// when materialization fails after the main operation already succeeded.
func (m *machine) reportError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = domain.UserMessage(err)
}

// Clear resets the machine to idle, dropping the error slot.
func (m *machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateProcessing {
		return
	}
	m.state = StateIdle
	m.lastError = ""
}
