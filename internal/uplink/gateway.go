// internal/uplink/gateway.go
package uplink

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"

	"github.com/hydromon/stationd/internal/record"
)

// Gateway is the cellular/satellite link device. Requests and responses are
// single JSON objects, newline-terminated, exchanged over a dedicated serial
// port. The acquisition cycle is already durable before any method here is
// called; every failure is for the caller to log and swallow.
type Gateway struct {
	port io.ReadWriteCloser
	rd   *bufio.Reader
	log  zerolog.Logger
}

// Config is minimal link config.
type Config struct {
	Device     string
	BaudRate   int
	ProductUID string
	Timeout    time.Duration
}

// Request and Response are free-form transaction objects keyed by "req".
type Request map[string]any
type Response map[string]any

// Connect opens the serial link and binds the gateway to its product with
// hub.set in minimum-traffic mode.
func Connect(cfg Config, log zerolog.Logger) (*Gateway, error) {
	if cfg.Device == "" {
		return nil, errors.New("uplink: gateway device required")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.BaudRate,
		ReadTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	g := newGateway(port, log)

	_, err = g.Transaction(Request{
		"req":     "hub.set",
		"product": cfg.ProductUID,
		"mode":    "minimum",
	})
	if err != nil {
		port.Close()
		return nil, err
	}

	return g, nil
}

func newGateway(rw io.ReadWriteCloser, log zerolog.Logger) *Gateway {
	return &Gateway{port: rw, rd: bufio.NewReader(rw), log: log}
}

// Close closes the serial link.
func (g *Gateway) Close() error {
	return g.port.Close()
}

// Transaction sends one request and reads exactly one reply line.
// A reply carrying an "err" field is returned as an error alongside the
// decoded response.
func (g *Gateway) Transaction(req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("uplink: encode request: %w", err)
	}

	if _, err := g.port.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("uplink: write: %w", err)
	}

	line, err := g.rd.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("uplink: read: %w", err)
	}

	var rsp Response
	if err := json.Unmarshal(line, &rsp); err != nil {
		return nil, fmt.Errorf("uplink: malformed reply: %w", err)
	}

	if msg, ok := rsp["err"].(string); ok && msg != "" {
		return rsp, fmt.Errorf("uplink: gateway error: %s", msg)
	}

	return rsp, nil
}

// SendReading queues one flattened record for best-effort delivery.
func (g *Gateway) SendReading(timestamp string, fields map[string]record.Reading, health map[string]int) error {
	body := map[string]any{
		"timestamp": timestamp,
		"data":      fields,
	}
	if health != nil {
		body["health"] = health
	}

	_, err := g.Transaction(Request{
		"req":  "note.add",
		"file": "data.qo",
		"sync": true,
		"body": body,
	})
	return err
}

// Sync forces a session with the remote service.
func (g *Gateway) Sync() error {
	_, err := g.Transaction(Request{"req": "hub.sync"})
	return err
}

// PendingFirmware enables firmware delivery for the named target and, when
// the hub is holding an image, fetches its payload. The second return is
// false when no update is pending.
func (g *Gateway) PendingFirmware(name string) ([]byte, bool, error) {
	if _, err := g.Transaction(Request{"req": "card.dfu", "name": name, "on": true}); err != nil {
		return nil, false, err
	}

	rsp, err := g.Transaction(Request{"req": "hub.firmware"})
	if err != nil {
		return nil, false, err
	}
	if pending, _ := rsp["pending"].(bool); !pending {
		return nil, false, nil
	}

	got, err := g.Transaction(Request{"req": "hub.firmware.get"})
	if err != nil {
		return nil, false, err
	}

	body, _ := got["body"].(string)
	if body == "" {
		return nil, false, errors.New("uplink: firmware body missing")
	}

	return []byte(body), true, nil
}
