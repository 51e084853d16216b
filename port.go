package uart

import (
	"fmt"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Config holds configuration parameters for opening a serial port.
// It is constructed once by the caller and never mutated afterwards.
type Config struct {
	Device   string
	BaudRate int
	Debug    bool
}

// Port is an exclusively-owned handle to one open serial device. It must not
// be used by more than one goroutine at a time; one exchange (Send, then
// ReadUntil) runs per handle.
type Port struct {
	fd        int
	config    Config
	log       *zap.Logger
	closeOnce sync.Once
}

// VTIME safety net beneath ReadUntil's explicit deadline: a blocking read
// unblocks after this many tenths of a second even with no byte received.
const interByteTimeoutTenths = 10

// Open opens and configures a serial device for raw byte-exact transfer:
// 8 data bits, no parity, one stop bit, no flow control, fixed baud.
// On any failure the descriptor is released before the error is returned.
func Open(cfg Config, log *zap.Logger) (*Port, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("opening serial port",
		zap.String("device", cfg.Device), zap.Int("baud", cfg.BaudRate))

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		log.Error("open failed", append([]zap.Field{zap.String("device", cfg.Device)}, errnoFields(err)...)...)
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceOpen, cfg.Device, err)
	}

	// TCGETS doubles as the isatty check: ENOTTY means the path is not a
	// terminal-class device, so raw-mode configuration is meaningless.
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		if err == unix.ENOTTY {
			log.Error("not a terminal device", zap.String("device", cfg.Device))
			return nil, fmt.Errorf("%w: %s", ErrNotATerminal, cfg.Device)
		}
		log.Error("get termios failed", errnoFields(err)...)
		return nil, fmt.Errorf("%w: %v", ErrGetAttr, err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL
	termios.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	// 8N1, receiver on, modem control lines ignored, no hardware handshake
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS
	termios.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD

	// Baud rate, input and output
	baud := baudToSpeed(cfg.BaudRate)
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud
	termios.Ispeed = baud
	termios.Ospeed = baud

	// Return from read() as soon as one byte is available, unblock after
	// the inter-byte timeout otherwise.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = interByteTimeoutTenths

	// Discard stale input queued before this session.
	unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		unix.Close(fd)
		log.Error("set termios failed", errnoFields(err)...)
		return nil, fmt.Errorf("%w: %v", ErrSetAttr, err)
	}

	// Turn back into blocking mode now that config is done
	syscall.SetNonblock(fd, false)

	log.Debug("serial port ready",
		zap.String("device", cfg.Device), zap.Int("baud", cfg.BaudRate))
	return &Port{fd: fd, config: cfg, log: log}, nil
}

// Close releases the device descriptor and invalidates the handle.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = unix.Close(p.fd)
		p.fd = -1
	})
	return err
}

// baudToSpeed maps a requested baud rate to its line-speed constant. The
// mapping is total: unsupported rates fall back to 115200 rather than fail.
func baudToSpeed(baud int) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	default:
		return unix.B115200 // fallback
	}
}
