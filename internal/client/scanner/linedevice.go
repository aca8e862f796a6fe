package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineDevice reads one decoded code per line from r. Blank lines are
// ignored. A single LineDevice can be started and stopped repeatedly; a
// single pump goroutine owns the reader for the device's whole lifetime, so
// input buffered while stopped is delivered on the next Start.
type LineDevice struct {
	r io.Reader

	mu      sync.Mutex
	lines   chan string
	done    chan struct{}
	running bool
	pumping bool
}

func NewLineDevice(r io.Reader) *LineDevice {
	return &LineDevice{r: r}
}

// pump is the single reader goroutine. It never touches device state.
func (d *LineDevice) pump() {
	scanner := bufio.NewScanner(d.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d.lines <- line
	}
	close(d.lines)
}

// Start launches delivery and returns immediately. Decoded values are
// delivered on a separate goroutine until Stop, EOF, or ctx end.
func (d *LineDevice) Start(ctx context.Context, onDecoded func(codeValue string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return ErrDeviceFailed
	}
	if !d.pumping {
		d.lines = make(chan string)
		d.pumping = true
		go d.pump()
	}

	done := make(chan struct{})
	d.done = done
	d.running = true

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case line, ok := <-d.lines:
				if !ok {
					return
				}
				onDecoded(line)
			}
		}
	}()

	return nil
}

// Stop ends delivery. It is safe to call at any time, from any goroutine.
func (d *LineDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}
	close(d.done)
	d.running = false
}
