package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgs_Valid(t *testing.T) {
	opts, err := parseArgs(
		[]string{"-p", "/dev/ttyUSB0", "-b", "115200", "-c", "STATUS", "-T", "10", "-x"},
		io.Discard,
	)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", opts.device)
	require.Equal(t, 115200, opts.baud)
	require.Equal(t, "STATUS", opts.command)
	require.Equal(t, 10, opts.timeout)
	require.True(t, opts.debug)
}

func TestParseArgs_DefaultTimeout(t *testing.T) {
	opts, err := parseArgs(
		[]string{"-p", "/dev/ttyUSB0", "-b", "9600", "-c", "PING"},
		io.Discard,
	)
	require.NoError(t, err)
	require.Equal(t, defaultTimeoutSeconds, opts.timeout)
	require.False(t, opts.debug)
}

func TestParseArgs_MissingRequired(t *testing.T) {
	cases := [][]string{
		{},
		{"-p", "/dev/ttyUSB0"},
		{"-p", "/dev/ttyUSB0", "-b", "115200"},
		{"-b", "115200", "-c", "PING"},
	}
	for _, args := range cases {
		_, err := parseArgs(args, io.Discard)
		require.ErrorIs(t, err, errUsage, "args %v", args)
	}
}

func TestParseArgs_MalformedBaud(t *testing.T) {
	_, err := parseArgs([]string{"-p", "/dev/ttyUSB0", "-b", "fast", "-c", "PING"}, io.Discard)
	require.Error(t, err)
	require.NotErrorIs(t, err, flag.ErrHelp)
}

func TestParseArgs_NegativeTimeout(t *testing.T) {
	_, err := parseArgs(
		[]string{"-p", "/dev/ttyUSB0", "-b", "115200", "-c", "PING", "-T", "-1"},
		io.Discard,
	)
	require.ErrorIs(t, err, errUsage)
}

func TestParseArgs_Help(t *testing.T) {
	_, err := parseArgs([]string{"-h"}, io.Discard)
	require.ErrorIs(t, err, flag.ErrHelp)
}
