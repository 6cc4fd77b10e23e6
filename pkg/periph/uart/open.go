package uart

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"go.bug.st/serial"
	"golang.org/x/net/websocket"
)

// DefaultBaudRate matches the 115200 8N1 link of the device.
const DefaultBaudRate = 115200

// Open opens a UART by URL:
//
//	serial:///dev/ttyACM0?baud=115200
//	ws://host:port/path
//	file:///path/to/log
//	stdout: or stderr:
func Open(rawURL string) (*Port, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid UART URL: %v", err)
	}
	switch u.Scheme {
	case "serial":
		return openSerial(u)
	case "ws", "wss":
		return openWebsocket(u)
	case "file":
		f, err := os.OpenFile(u.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		return NewPort(u.Path, f, f), nil
	case "stdout":
		return NewPort("stdout", os.Stdout, nil), nil
	case "stderr":
		return NewPort("stderr", os.Stderr, nil), nil
	default:
		return nil, fmt.Errorf("unknown UART URL scheme: %q", u.Scheme)
	}
}

func openSerial(u *url.URL) (*Port, error) {
	port, name, err := openSerialPort(u)
	if err != nil {
		return nil, err
	}
	return NewPort(name, port, port), nil
}

func openSerialPort(u *url.URL) (serial.Port, string, error) {
	name := u.Host + u.Path
	if name == "" {
		return nil, "", fmt.Errorf("serial port not specified")
	}
	mode := &serial.Mode{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if val := u.Query().Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return nil, "", fmt.Errorf("invalid baud rate %q", val)
		}
		mode.BaudRate = baud
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, "", fmt.Errorf("open serial %s: %w", name, err)
	}
	return port, name, nil
}

// OpenReader opens the receiving side of a UART by URL. It accepts
// serial:// and file:// URLs as Open, and stdin:.
func OpenReader(rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid UART URL: %v", err)
	}
	switch u.Scheme {
	case "serial":
		port, _, err := openSerialPort(u)
		return port, err
	case "file":
		return os.Open(u.Path)
	case "stdin":
		return io.NopCloser(os.Stdin), nil
	default:
		return nil, fmt.Errorf("unsupported UART URL scheme for reading: %q", u.Scheme)
	}
}

type wsWriter struct {
	conn *websocket.Conn
}

func (w *wsWriter) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(w.conn, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func openWebsocket(u *url.URL) (*Port, error) {
	origin := "http://" + u.Host + "/"
	if u.Scheme == "wss" {
		origin = "https://" + u.Host + "/"
	}
	conn, err := websocket.Dial(u.String(), "", origin)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}
	return NewPort(u.String(), &wsWriter{conn: conn}, conn), nil
}
