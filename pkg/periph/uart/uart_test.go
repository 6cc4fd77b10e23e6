package uart

import (
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/opmode/pkg/periph"
)

func TestPortTransmit(t *testing.T) {
	var sb strings.Builder
	p := NewPort("buf", &sb, nil)
	require.NoError(t, p.Transmit([]byte("hello\r\n"), time.Second))
	require.Equal(t, "hello\r\n", sb.String())
	require.NoError(t, p.Close())
}

func TestPortTransmitTimeout(t *testing.T) {
	r, w := io.Pipe()
	defer r.Close()
	p := NewPort("pipe", w, w)
	start := time.Now()
	err := p.Transmit([]byte("stuck"), 20*time.Millisecond)
	require.True(t, errors.Is(err, periph.ErrTimeout))
	require.True(t, time.Since(start) >= 20*time.Millisecond)

	// the port was closed to abort the write.
	_, err = w.Write([]byte("x"))
	require.Equal(t, io.ErrClosedPipe, err)
}

type stallWriter struct {
	writes    atomic.Int32
	releaseCh chan struct{}
}

func (w *stallWriter) Write(p []byte) (int, error) {
	w.writes.Add(1)
	<-w.releaseCh
	return len(p), nil
}

func TestPortNoWriteAfterTimeout(t *testing.T) {
	w := &stallWriter{releaseCh: make(chan struct{})}
	p := NewPort("stdout", w, nil)
	err := p.Transmit([]byte("stuck"), 10*time.Millisecond)
	require.True(t, errors.Is(err, periph.ErrTimeout))

	err = p.Transmit([]byte("late"), time.Second)
	require.True(t, errors.Is(err, ErrClosed))
	close(w.releaseCh)
	require.Equal(t, int32(1), w.writes.Load())
}

func TestOpen(t *testing.T) {
	testCases := []struct {
		url  string
		fail bool
	}{
		{url: "stdout:"},
		{url: "stderr:"},
		{url: "bogus://x", fail: true},
		{url: "serial://", fail: true},
		{url: "serial:///dev/ttyX?baud=abc", fail: true},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			p, err := Open(tc.url)
			if tc.fail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p)
		})
	}
}

func TestOpenFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "uart.log")
	p, err := Open("file://" + fn)
	require.NoError(t, err)
	require.NoError(t, p.Transmit([]byte("line\r\n"), time.Second))
	require.NoError(t, p.Close())
	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, "line\r\n", string(data))
}

func TestOpenReader(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "uart.log")
	require.NoError(t, os.WriteFile(fn, []byte("abc"), 0644))
	r, err := OpenReader("file://" + fn)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))
	require.NoError(t, r.Close())

	_, err = OpenReader("ws://localhost/x")
	require.Error(t, err)
}

func TestOpenWebsocket(t *testing.T) {
	msgCh := make(chan string, 1)
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		var msg string
		if websocket.Message.Receive(conn, &msg) == nil {
			msgCh <- msg
		}
	}))
	defer srv.Close()

	p, err := Open("ws" + strings.TrimPrefix(srv.URL, "http") + "/uart")
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Transmit([]byte("Operational mode: IDLE\r\n"), time.Second))
	select {
	case msg := <-msgCh:
		require.Equal(t, "Operational mode: IDLE\r\n", msg)
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}
