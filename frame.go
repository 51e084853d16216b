package uart

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Frame markers. A frame is start ++ payload ++ end with no length field and
// no escaping; the payload may itself contain marker-like substrings.
const (
	StartMarker = "[UART_COM][START]"
	EndMarker   = "[UART_COM][END]"
)

// Pause before retrying a write or read that would block.
const retryDelay = time.Millisecond

// Send frames payload with the start/end markers and writes the full frame
// to the device, then waits for physical transmission to complete. Short
// writes advance and repeat, interrupted writes retry immediately, would-block
// writes retry after a short sleep; any other failure aborts with ErrWrite.
// The send itself carries no deadline, only the response read does.
func (p *Port) Send(payload []byte) error {
	if p.fd < 0 {
		p.log.Warn("send on closed port", zap.Int("payload_len", len(payload)))
		return ErrClosed
	}

	frame := make([]byte, 0, len(StartMarker)+len(payload)+len(EndMarker))
	frame = append(frame, StartMarker...)
	frame = append(frame, payload...)
	frame = append(frame, EndMarker...)

	written := 0
	for written < len(frame) {
		n, err := unix.Write(p.fd, frame[written:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			time.Sleep(retryDelay)
			continue
		}
		if err != nil {
			p.log.Error("write failed", append([]zap.Field{
				zap.Int("written", written),
				zap.Int("frame_len", len(frame)),
			}, errnoFields(err)...)...)
			return fmt.Errorf("%w after %d/%d bytes: %v", ErrWrite, written, len(frame), err)
		}
		written += n
	}

	// The bytes were already handed to the driver, so a failed drain is a
	// soft warning rather than a failed send.
	if err := p.Drain(); err != nil {
		p.log.Warn("drain failed", append([]zap.Field{
			zap.Int("frame_len", len(frame)),
		}, errnoFields(err)...)...)
	}

	p.log.Debug("frame sent",
		zap.Int("payload_len", len(payload)), zap.Int("frame_len", len(frame)))
	return nil
}

// Drain blocks until all previously written bytes have physically left the
// device's output queue.
func (p *Port) Drain() error {
	if p.fd < 0 {
		return ErrClosed
	}
	if err := unix.IoctlSetInt(p.fd, unix.TCSBRK, 1); err != nil {
		return fmt.Errorf("%w: %v", ErrDrain, err)
	}
	return nil
}
