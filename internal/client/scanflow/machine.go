package scanflow

import (
	"context"
	"errors"
	"sync"

	"github.com/avolkov/scanonce/internal/client/scanner"
)

// Submitter is the slice of the pipeline the machine needs.
type Submitter interface {
	Submit(ctx context.Context, codeValue string) (*Outcome, error)
}

// Machine owns the scan UI state. All transitions happen under one mutex;
// decodes arriving outside the Scanning phase are dropped, so at most one
// submission is ever in flight. The generation counter fences late results:
// a submit that finishes after Close (or after the attempt it belonged to
// was abandoned) must not mutate anything.
type Machine struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	closed bool

	ctx       context.Context
	submitter Submitter
	device    scanner.Device

	// notify, when set, receives a snapshot after every transition. Called
	// without the lock held.
	notify func(State)
}

func NewMachine(submitter Submitter, device scanner.Device, notify func(State)) *Machine {
	return &Machine{submitter: submitter, device: device, notify: notify}
}

// Start enters the Scanning phase and begins capture.
func (m *Machine) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.startScanningLocked()
	snapshot := m.state
	m.mu.Unlock()

	m.emit(snapshot)
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ScanAnother resets a terminal phase back to Scanning. In any other phase
// it does nothing.
func (m *Machine) ScanAnother() {
	m.mu.Lock()
	if m.closed || !m.state.Phase.terminal() {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.startScanningLocked()
	snapshot := m.state
	m.mu.Unlock()

	m.emit(snapshot)
}

// Retry attempts to recover from a camera failure.
func (m *Machine) Retry() {
	m.mu.Lock()
	if m.closed || m.state.Phase != PhaseCameraError {
		m.mu.Unlock()
		return
	}
	m.startScanningLocked()
	snapshot := m.state
	m.mu.Unlock()

	m.emit(snapshot)
}

// Close tears the machine down. Any in-flight submission result arriving
// afterwards is discarded.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.gen++
	m.mu.Unlock()

	m.device.Stop()
}

func (m *Machine) startScanningLocked() {
	if err := m.device.Start(m.ctx, m.onDecoded); err != nil {
		classified := scanner.Classify(err)
		m.state = cameraErrorState(cameraMessage(classified), classified)
		return
	}
	m.state = scanningState()
}

// onDecoded is the device callback. Decodes outside Scanning are dropped,
// which is the re-entrancy guard: a second decode while one submission is in
// flight cannot start another.
func (m *Machine) onDecoded(codeValue string) {
	m.mu.Lock()
	if m.closed || m.state.Phase != PhaseScanning {
		m.mu.Unlock()
		return
	}

	m.state = processingState(codeValue)
	gen := m.gen
	snapshot := m.state
	m.mu.Unlock()

	m.device.Stop()
	m.emit(snapshot)

	go m.submit(gen, codeValue)
}

func (m *Machine) submit(gen uint64, codeValue string) {
	outcome, err := m.submitter.Submit(m.ctx, codeValue)

	m.mu.Lock()
	if m.closed || m.gen != gen {
		// The attempt this result belongs to is gone.
		m.mu.Unlock()
		return
	}

	switch {
	case err == nil && outcome.Status == StatusAccepted:
		m.state = acceptedState(outcome.Record)
	case err == nil && outcome.Status == StatusDuplicate:
		m.state = duplicateState(codeValue, outcome.Message)
	case errors.Is(err, ErrNotAuthenticated):
		m.state = rejectedState(codeValue, "session expired, please log in again", err)
	default:
		m.state = rejectedState(codeValue, "could not confirm the scan, try again", err)
	}
	snapshot := m.state
	m.mu.Unlock()

	m.emit(snapshot)
}

func (m *Machine) emit(s State) {
	if m.notify != nil {
		m.notify(s)
	}
}

func cameraMessage(err error) string {
	switch {
	case errors.Is(err, scanner.ErrPermissionDenied):
		return "camera access denied, check permissions"
	case errors.Is(err, scanner.ErrDeviceNotFound):
		return "no camera found"
	default:
		return "camera failed"
	}
}
