package uart

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ReadStatus is the terminal state of one ReadUntil call.
type ReadStatus int

const (
	// ReadComplete means the end marker was found in the accumulated bytes.
	ReadComplete ReadStatus = iota
	// ReadTimedOut means the deadline expired, or the stream ended, before
	// the marker appeared. The partial bytes are still returned.
	ReadTimedOut
	// ReadFailed means the wait or the read itself failed.
	ReadFailed
)

func (s ReadStatus) String() string {
	switch s {
	case ReadComplete:
		return "complete"
	case ReadTimedOut:
		return "timed out"
	case ReadFailed:
		return "failed"
	default:
		return fmt.Sprintf("ReadStatus(%d)", int(s))
	}
}

// ReadResult carries the outcome of one ReadUntil call. Data holds the
// accumulated response: complete through the end of the marker for
// ReadComplete, partial (possibly empty) for ReadTimedOut, and whatever
// arrived before the failure for ReadFailed, kept as debug context.
type ReadResult struct {
	Status ReadStatus
	Data   []byte
}

// One read() worth of response data.
const readChunkSize = 512

// ReadUntil accumulates bytes from the device until marker appears anywhere
// in the received data, the timeout expires, or the stream ends. A timeout
// is not an error: the result carries whatever partial bytes arrived. The
// deadline is absolute, fixed at entry; remaining time is recomputed every
// iteration so interruptions and short reads cannot stretch the budget.
func (p *Port) ReadUntil(marker []byte, timeout time.Duration) (ReadResult, error) {
	if p.fd < 0 {
		p.log.Warn("read on closed port")
		return ReadResult{Status: ReadFailed}, ErrClosed
	}

	deadline := time.Now().Add(timeout)
	var acc accumulator

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			p.log.Debug("read timed out", zap.Int("partial_len", acc.len()))
			return ReadResult{Status: ReadTimedOut, Data: acc.bytes()}, nil
		}

		pfd := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
		waitMs := int((remaining + time.Millisecond - 1) / time.Millisecond)
		nready, err := unix.Poll(pfd, waitMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			p.log.Error("poll failed", errnoFields(err)...)
			return ReadResult{Status: ReadFailed, Data: acc.bytes()},
				fmt.Errorf("%w: %v", ErrWait, err)
		}
		if nready == 0 {
			p.log.Debug("read timed out", zap.Int("partial_len", acc.len()))
			return ReadResult{Status: ReadTimedOut, Data: acc.bytes()}, nil
		}

		chunk := acc.next(readChunkSize)
		n, err := unix.Read(p.fd, chunk)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			time.Sleep(retryDelay)
			continue
		}
		if err != nil {
			p.log.Error("read failed", append([]zap.Field{
				zap.Int("partial_len", acc.len()),
			}, errnoFields(err)...)...)
			return ReadResult{Status: ReadFailed, Data: acc.bytes()},
				fmt.Errorf("%w: %v", ErrRead, err)
		}
		if n == 0 {
			// Remote end closed before the marker: partial data, not an error.
			p.log.Debug("stream ended before marker", zap.Int("partial_len", acc.len()))
			return ReadResult{Status: ReadTimedOut, Data: acc.bytes()}, nil
		}
		acc.extend(n)

		// A marker split across reads still matches: the whole history is
		// scanned, not just the new chunk.
		if acc.len() >= len(marker) {
			if idx := bytes.Index(acc.bytes(), marker); idx >= 0 {
				data := acc.bytes()[:idx+len(marker)]
				p.log.Debug("read complete", zap.Int("response_len", len(data)))
				return ReadResult{Status: ReadComplete, Data: data}, nil
			}
		}
	}
}
