package cli

import (
	"context"
	"os"
	"sync"

	"github.com/avolkov/scanonce/internal/client/ledger"
	"github.com/avolkov/scanonce/internal/client/scanflow"
)

// manualDevice satisfies scanner.Device for the terminal frontend. The
// command loop owns stdin, so decodes are injected synchronously by the loop
// instead of being read by a background goroutine. This keeps a single
// reader on stdin and still exercises the full machine flow.
type manualDevice struct {
	mu        sync.Mutex
	onDecoded func(string)
}

func (d *manualDevice) Start(_ context.Context, onDecoded func(string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDecoded = onDecoded
	return nil
}

func (d *manualDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDecoded = nil
}

func (d *manualDevice) inject(codeValue string) {
	d.mu.Lock()
	cb := d.onDecoded
	d.mu.Unlock()
	if cb != nil {
		cb(codeValue)
	}
}

// Scan runs the scan loop: read a code, submit it, report the verdict, and
// repeat until the user enters "stop". Each code is submitted at most once;
// the machine drops any input that arrives while a submission is in flight.
func (a *App) Scan(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return nil
	}

	led := ledger.NewRemote(a.client, func() string {
		if s := a.sessions.Current(); s != nil {
			return s.Token
		}
		return ""
	})
	pipeline := scanflow.NewPipeline(a.sessions, led)

	device := &manualDevice{}
	terminal := make(chan scanflow.State, 1)

	machine := scanflow.NewMachine(pipeline, device, func(s scanflow.State) {
		switch s.Phase {
		case scanflow.PhaseAccepted:
			printlnFn("Accepted:", s.Record.CodeValue)
			terminal <- s
		case scanflow.PhaseDuplicate:
			printlnFn("Duplicate:", s.Message)
			terminal <- s
		case scanflow.PhaseRejected:
			printlnFn("Rejected:", s.Message)
			terminal <- s
		case scanflow.PhaseCameraError:
			printlnFn("Device error:", s.Message)
			terminal <- s
		}
	})

	machine.Start(ctx)
	defer machine.Close()

	for {
		code, err := getSimpleText(a.reader, "Enter code ('stop' to finish)", os.Stdout)
		if err != nil {
			return err
		}
		if code == "" {
			continue
		}
		if code == "stop" {
			return nil
		}

		device.inject(code)

		select {
		case s := <-terminal:
			if s.Phase == scanflow.PhaseCameraError {
				machine.Retry()
				continue
			}
			machine.ScanAnother()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
