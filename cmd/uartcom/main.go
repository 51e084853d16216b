// Command uartcom sends one framed command to a serial device and waits for
// the framed response.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	uart "github.com/luhtfiimanal/go-linux-uart"
	"github.com/luhtfiimanal/go-linux-uart/internal/logging"
	"go.uber.org/zap"
)

const defaultTimeoutSeconds = 5

type options struct {
	device  string
	baud    int
	command string
	timeout int
	debug   bool
}

var errUsage = errors.New("invalid arguments")

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}
	os.Exit(run(opts))
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("uartcom", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.device, "p", "", "path to serial device (e.g. /dev/ttyUSB0)")
	fs.IntVar(&o.baud, "b", 0, "baud rate (9600, 19200, 38400, 57600, 115200)")
	fs.StringVar(&o.command, "c", "", "command payload to send")
	fs.IntVar(&o.timeout, "T", defaultTimeoutSeconds, "response timeout in seconds")
	fs.BoolVar(&o.debug, "x", false, "enable debug logging to "+logging.DebugLogFile)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: uartcom -p <device_path> -b <baud_rate> -c <command> [-T <seconds>] [-x]\n")
		fmt.Fprintf(stderr, "Example: uartcom -p /dev/ttyUSB0 -b 115200 -c 'STATUS' -T 5\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.device == "" || o.baud <= 0 || o.command == "" {
		fmt.Fprintln(stderr, "missing required -p, -b and/or -c")
		fs.Usage()
		return o, errUsage
	}
	if o.timeout < 0 {
		fmt.Fprintln(stderr, "timeout must be non-negative")
		fs.Usage()
		return o, errUsage
	}
	return o, nil
}

func run(o options) int {
	log := logging.New(logging.Options{Debug: o.debug})
	defer log.Sync()

	log.Info("starting exchange",
		zap.String("device", o.device),
		zap.Int("baud", o.baud),
		zap.Int("timeout_s", o.timeout),
		zap.Bool("debug", o.debug))

	cfg := uart.Config{Device: o.device, BaudRate: o.baud, Debug: o.debug}
	port, err := uart.Open(cfg, log)
	if err != nil {
		log.Error("open failed", zap.Error(err))
		return 1
	}
	defer port.Close()

	if err := port.Send([]byte(o.command)); err != nil {
		log.Error("send failed", zap.Error(err))
		return 1
	}

	res, err := port.ReadUntil([]byte(uart.EndMarker), time.Duration(o.timeout)*time.Second)
	if err != nil {
		log.Error("read failed", zap.Error(err))
		if len(res.Data) > 0 {
			fmt.Printf("partial response (%d bytes): %q\n", len(res.Data), res.Data)
		}
		return 1
	}

	fmt.Printf("status: %s\n", res.Status)
	fmt.Printf("response (%d bytes): %q\n", len(res.Data), res.Data)
	return 0
}
