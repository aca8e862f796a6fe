// Package scanner abstracts the code-capture device. The scan loop only
// depends on the Device interface; the shipped implementation reads decoded
// lines from a reader, which covers terminal paste and HID-style scanners
// that type the code followed by a newline.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

var (
	ErrPermissionDenied = errors.New("device access denied")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrDeviceFailed     = errors.New("device failed")
)

// Device delivers decoded code values. Start delivers each decode through
// onDecoded until Stop is called or the context ends; Stop is idempotent.
type Device interface {
	Start(ctx context.Context, onDecoded func(codeValue string)) error
	Stop()
}

// Classify maps a raw device error onto one of the package sentinels so
// callers can branch without knowing the underlying device type.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrDeviceNotFound), errors.Is(err, ErrDeviceFailed):
		return err
	case errors.Is(err, fs.ErrPermission), errors.Is(err, os.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, os.ErrNotExist):
		return ErrDeviceNotFound
	default:
		return errors.Join(ErrDeviceFailed, err)
	}
}
