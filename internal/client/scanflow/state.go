package scanflow

import "github.com/avolkov/scanonce/internal/client/models"

// Phase is the UI-visible stage of the scan flow.
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseProcessing
	PhaseAccepted
	PhaseDuplicate
	PhaseRejected
	PhaseCameraError
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseProcessing:
		return "processing"
	case PhaseAccepted:
		return "accepted"
	case PhaseDuplicate:
		return "duplicate"
	case PhaseRejected:
		return "rejected"
	case PhaseCameraError:
		return "camera error"
	default:
		return "unknown"
	}
}

// terminal reports whether the phase ends a scan attempt. Only terminal
// phases can be reset by ScanAnother.
func (p Phase) terminal() bool {
	switch p {
	case PhaseAccepted, PhaseDuplicate, PhaseRejected:
		return true
	default:
		return false
	}
}

// State is one immutable snapshot of the flow. Err holds the raw failure
// for diagnostics; Message is what the user sees.
type State struct {
	Phase     Phase
	CodeValue string
	Message   string
	Record    *models.ScanRecord
	Err       error
}

// Pure transition constructors. The Machine is the only mutator; these just
// spell out what each phase carries.

func scanningState() State {
	return State{Phase: PhaseScanning}
}

func processingState(codeValue string) State {
	return State{Phase: PhaseProcessing, CodeValue: codeValue}
}

func acceptedState(record *models.ScanRecord) State {
	return State{Phase: PhaseAccepted, CodeValue: record.CodeValue, Record: record, Message: "scan recorded"}
}

func duplicateState(codeValue, message string) State {
	return State{Phase: PhaseDuplicate, CodeValue: codeValue, Message: message}
}

func rejectedState(codeValue, message string, err error) State {
	return State{Phase: PhaseRejected, CodeValue: codeValue, Message: message, Err: err}
}

func cameraErrorState(message string, err error) State {
	return State{Phase: PhaseCameraError, Message: message, Err: err}
}
