package uart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadUntil_CompleteSingleChunk(t *testing.T) {
	master, port := openPair(t)

	_, err := master.Write([]byte("OK" + EndMarker))
	require.NoError(t, err)

	res, err := port.ReadUntil([]byte(EndMarker), time.Second)
	require.NoError(t, err)
	require.Equal(t, ReadComplete, res.Status)
	require.Equal(t, "OK"+EndMarker, string(res.Data))
}

func TestReadUntil_SplitMarker(t *testing.T) {
	master, port := openPair(t)

	// Deliver the end marker across two writes; the reader must only report
	// completion once the full marker has been accumulated.
	go func() {
		master.Write([]byte("OK[UART_CO"))
		time.Sleep(50 * time.Millisecond)
		master.Write([]byte("M][END]"))
	}()

	res, err := port.ReadUntil([]byte(EndMarker), time.Second)
	require.NoError(t, err)
	require.Equal(t, ReadComplete, res.Status)
	require.Equal(t, "OK"+EndMarker, string(res.Data))
}

func TestReadUntil_TimeoutNoData(t *testing.T) {
	_, port := openPair(t)

	start := time.Now()
	res, err := port.ReadUntil([]byte(EndMarker), 200*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, ReadTimedOut, res.Status)
	require.Empty(t, res.Data)
	require.GreaterOrEqual(t, elapsed, 190*time.Millisecond)
	require.Less(t, elapsed, time.Second)
}

func TestReadUntil_TimeoutPartialData(t *testing.T) {
	master, port := openPair(t)

	_, err := master.Write([]byte("ABC"))
	require.NoError(t, err)

	res, err := port.ReadUntil([]byte(EndMarker), 300*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, ReadTimedOut, res.Status)
	require.Equal(t, "ABC", string(res.Data))
}

func TestReadUntil_DelayedMarker(t *testing.T) {
	master, port := openPair(t)

	go func() {
		master.Write([]byte("OK"))
		time.Sleep(200 * time.Millisecond)
		master.Write([]byte(EndMarker))
	}()

	start := time.Now()
	res, err := port.ReadUntil([]byte(EndMarker), 2*time.Second)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, ReadComplete, res.Status)
	require.Equal(t, "OK"+EndMarker, string(res.Data))
	require.Less(t, elapsed, 2*time.Second)
}

func TestReadUntil_TruncatesAfterMarker(t *testing.T) {
	master, port := openPair(t)

	_, err := master.Write([]byte("OK" + EndMarker + "TRAILING"))
	require.NoError(t, err)

	res, err := port.ReadUntil([]byte(EndMarker), time.Second)
	require.NoError(t, err)
	require.Equal(t, ReadComplete, res.Status)
	require.Equal(t, "OK"+EndMarker, string(res.Data))
}

func TestReadUntil_LargeTransferPreservesOrder(t *testing.T) {
	master, port := openPair(t)

	// Well past several capacity doublings of the 512-byte chunk size.
	payload := bytes.Repeat([]byte("0123456789abcdef"), 512) // 8 KiB
	go func() {
		for off := 0; off < len(payload); off += 700 {
			end := off + 700
			if end > len(payload) {
				end = len(payload)
			}
			master.Write(payload[off:end])
			time.Sleep(time.Millisecond)
		}
		master.Write([]byte(EndMarker))
	}()

	res, err := port.ReadUntil([]byte(EndMarker), 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, ReadComplete, res.Status)
	require.Equal(t, string(payload)+EndMarker, string(res.Data))
}

func TestReadUntil_ErrorAfterMasterClose(t *testing.T) {
	master, port := openPair(t)

	// Simulate device disconnect by closing the master side.
	require.NoError(t, master.Close())

	res, err := port.ReadUntil([]byte(EndMarker), time.Second)
	require.Error(t, err)
	require.Equal(t, ReadFailed, res.Status)
}

func TestReadUntil_ClosedPort(t *testing.T) {
	_, port := openPair(t)
	require.NoError(t, port.Close())

	res, err := port.ReadUntil([]byte(EndMarker), time.Second)
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, ReadFailed, res.Status)
}
