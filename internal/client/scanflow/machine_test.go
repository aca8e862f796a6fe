package scanflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/scanonce/internal/client/models"
	"github.com/avolkov/scanonce/internal/client/scanner"
)

type fakeDevice struct {
	mu        sync.Mutex
	onDecoded func(string)
	startErr  error

	startCalls int
	stopCalls  int
}

func (d *fakeDevice) Start(ctx context.Context, onDecoded func(string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startCalls++
	if d.startErr != nil {
		return d.startErr
	}
	d.onDecoded = onDecoded
	return nil
}

func (d *fakeDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopCalls++
}

func (d *fakeDevice) decode(code string) {
	d.mu.Lock()
	cb := d.onDecoded
	d.mu.Unlock()
	if cb != nil {
		cb(code)
	}
}

type fakeSubmitter struct {
	mu      sync.Mutex
	outcome *Outcome
	err     error
	release chan struct{} // when set, Submit blocks until closed
	calls   int
}

func (f *fakeSubmitter) Submit(ctx context.Context, codeValue string) (*Outcome, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	outcome, err := f.outcome, f.err
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return outcome, err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// harness collects every emitted state on a channel.
func newHarness(submitter *fakeSubmitter, device *fakeDevice) (*Machine, chan State) {
	states := make(chan State, 16)
	m := NewMachine(submitter, device, func(s State) { states <- s })
	return m, states
}

func waitForPhase(t *testing.T, states chan State, phase Phase) State {
	t.Helper()
	for {
		select {
		case s := <-states:
			if s.Phase == phase {
				return s
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for phase %v", phase)
		}
	}
}

func TestMachine_DecodeToAccepted(t *testing.T) {
	device := &fakeDevice{}
	submitter := &fakeSubmitter{outcome: &Outcome{
		Status: StatusAccepted,
		Record: &models.ScanRecord{ID: "s-1", CodeValue: "CODE-1"},
	}}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	require.Equal(t, PhaseScanning, waitForPhase(t, states, PhaseScanning).Phase)

	device.decode("CODE-1")

	processing := waitForPhase(t, states, PhaseProcessing)
	assert.Equal(t, "CODE-1", processing.CodeValue)

	accepted := waitForPhase(t, states, PhaseAccepted)
	assert.Equal(t, "CODE-1", accepted.Record.CodeValue)
	assert.Equal(t, 1, submitter.callCount())
}

func TestMachine_DecodeToDuplicate(t *testing.T) {
	device := &fakeDevice{}
	submitter := &fakeSubmitter{outcome: &Outcome{Status: StatusDuplicate, Message: "already scanned"}}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	device.decode("CODE-1")

	duplicate := waitForPhase(t, states, PhaseDuplicate)
	assert.Equal(t, "CODE-1", duplicate.CodeValue)
	assert.Equal(t, "already scanned", duplicate.Message)
}

func TestMachine_SecondDecodeDuringProcessingIsDropped(t *testing.T) {
	device := &fakeDevice{}
	release := make(chan struct{})
	submitter := &fakeSubmitter{
		outcome: &Outcome{Status: StatusAccepted, Record: &models.ScanRecord{CodeValue: "CODE-1"}},
		release: release,
	}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	device.decode("CODE-1")
	waitForPhase(t, states, PhaseProcessing)

	// The first submission is still in flight.
	device.decode("CODE-2")
	device.decode("CODE-3")

	close(release)

	accepted := waitForPhase(t, states, PhaseAccepted)
	assert.Equal(t, "CODE-1", accepted.Record.CodeValue)
	assert.Equal(t, 1, submitter.callCount(), "dropped decodes must not submit")
}

func TestMachine_ScanAnotherResetsTerminalPhase(t *testing.T) {
	device := &fakeDevice{}
	submitter := &fakeSubmitter{outcome: &Outcome{Status: StatusDuplicate, Message: "already scanned"}}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	device.decode("CODE-1")
	waitForPhase(t, states, PhaseDuplicate)

	m.ScanAnother()
	assert.Equal(t, PhaseScanning, waitForPhase(t, states, PhaseScanning).Phase)

	// A new decode goes through again.
	device.decode("CODE-2")
	waitForPhase(t, states, PhaseDuplicate)
	assert.Equal(t, 2, submitter.callCount())
}

func TestMachine_ScanAnotherIgnoredWhileProcessing(t *testing.T) {
	device := &fakeDevice{}
	release := make(chan struct{})
	submitter := &fakeSubmitter{
		outcome: &Outcome{Status: StatusAccepted, Record: &models.ScanRecord{CodeValue: "CODE-1"}},
		release: release,
	}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	device.decode("CODE-1")
	waitForPhase(t, states, PhaseProcessing)

	m.ScanAnother()
	assert.Equal(t, PhaseProcessing, m.State().Phase)

	close(release)
	waitForPhase(t, states, PhaseAccepted)
}

func TestMachine_NotAuthenticatedLandsInRejected(t *testing.T) {
	device := &fakeDevice{}
	submitter := &fakeSubmitter{err: ErrNotAuthenticated}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	device.decode("CODE-1")

	rejected := waitForPhase(t, states, PhaseRejected)
	assert.ErrorIs(t, rejected.Err, ErrNotAuthenticated)
	assert.Contains(t, rejected.Message, "log in")
}

func TestMachine_TransientFailureLandsInRejected(t *testing.T) {
	device := &fakeDevice{}
	submitter := &fakeSubmitter{err: ErrTransient}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	device.decode("CODE-1")

	rejected := waitForPhase(t, states, PhaseRejected)
	assert.ErrorIs(t, rejected.Err, ErrTransient)
	assert.Equal(t, "CODE-1", rejected.CodeValue)
}

func TestMachine_DeviceFailureAndRetry(t *testing.T) {
	device := &fakeDevice{startErr: scanner.ErrPermissionDenied}
	submitter := &fakeSubmitter{}
	m, states := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())

	failed := waitForPhase(t, states, PhaseCameraError)
	assert.ErrorIs(t, failed.Err, scanner.ErrPermissionDenied)
	assert.Contains(t, failed.Message, "denied")

	// The camera comes back.
	device.mu.Lock()
	device.startErr = nil
	device.mu.Unlock()

	m.Retry()
	assert.Equal(t, PhaseScanning, waitForPhase(t, states, PhaseScanning).Phase)
}

func TestMachine_RetryIgnoredOutsideCameraError(t *testing.T) {
	device := &fakeDevice{}
	submitter := &fakeSubmitter{}
	m, _ := newHarness(submitter, device)
	defer m.Close()

	m.Start(context.Background())
	startsBefore := device.startCalls

	m.Retry()
	assert.Equal(t, startsBefore, device.startCalls)
}

func TestMachine_LateResultAfterCloseIsDiscarded(t *testing.T) {
	device := &fakeDevice{}
	release := make(chan struct{})
	submitter := &fakeSubmitter{
		outcome: &Outcome{Status: StatusAccepted, Record: &models.ScanRecord{CodeValue: "CODE-1"}},
		release: release,
	}
	m, states := newHarness(submitter, device)

	m.Start(context.Background())
	device.decode("CODE-1")
	waitForPhase(t, states, PhaseProcessing)

	m.Close()
	close(release) // the in-flight submit finishes after teardown

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, PhaseProcessing, m.State().Phase, "no mutation after Close")
}

func TestMachine_CloseStopsDeviceAndIsIdempotent(t *testing.T) {
	device := &fakeDevice{}
	m, _ := newHarness(&fakeSubmitter{}, device)

	m.Start(context.Background())
	m.Close()
	m.Close()

	device.mu.Lock()
	defer device.mu.Unlock()
	assert.Equal(t, 1, device.stopCalls)
}
