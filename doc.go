// Package uart implements a minimal, Linux-only framed command/response
// exchange with an embedded device over a serial line.
//
// Outgoing commands are wrapped with fixed start/end markers and written in
// full before the response is awaited. Responses are accumulated chunk by
// chunk until the end marker appears anywhere in the received bytes, until a
// wall-clock deadline expires, or until the stream ends. A timeout is a
// first-class outcome carrying whatever partial bytes arrived, not an error.
//
// Features:
//   - Raw syscall-based termios configuration, 8N1, no flow control
//   - Fixed baud set {9600, 19200, 38400, 57600, 115200}, 115200 fallback
//   - Full-write loop with drain confirmation after every send
//   - Deadline-bounded poll/read loop with marker detection across chunks
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	cfg := uart.Config{
//	    Device:   "/dev/ttyUSB0",
//	    BaudRate: 115200,
//	}
//	port, err := uart.Open(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	if err := port.Send([]byte("STATUS\r\n")); err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := port.ReadUntil([]byte(uart.EndMarker), 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s: %q\n", res.Status, res.Data)
package uart
