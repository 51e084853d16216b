package uart

import (
	"errors"
	"syscall"

	"go.uber.org/zap"
)

// Failure kinds, matchable with errors.Is. Configuration failures
// (ErrDeviceOpen through ErrSetAttr) are fatal for the session; the
// descriptor is always released before they are returned.
var (
	ErrDeviceOpen   = errors.New("uart: open device failed")
	ErrNotATerminal = errors.New("uart: device is not a terminal")
	ErrGetAttr      = errors.New("uart: get terminal attributes failed")
	ErrSetAttr      = errors.New("uart: set terminal attributes failed")
	ErrClosed       = errors.New("uart: port is closed")
	ErrWrite        = errors.New("uart: write failed")
	ErrDrain        = errors.New("uart: drain failed")
	ErrRead         = errors.New("uart: read failed")
	ErrWait         = errors.New("uart: wait for data failed")
)

// errnoFields extracts the OS error code and its description for logging.
// Returns nil when err carries no errno.
func errnoFields(err error) []zap.Field {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return []zap.Field{
			zap.Int("errno", int(errno)),
			zap.String("errno_desc", errno.Error()),
		}
	}
	return nil
}
