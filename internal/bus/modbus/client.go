// internal/bus/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/hydromon/stationd/internal/bus"
)

// Client implements bus.Transport over Modbus RTU on a shared RS-485 line.
// It serializes requests because it mutates SlaveId per addressed peer and
// because the line is half-duplex.
type Client struct {
	mu      sync.Mutex
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
	Timeout  time.Duration
}

// New opens the serial line and returns a connected RTU master.
func New(cfg Config) (*Client, error) {
	if cfg.Device == "" {
		return nil, errors.New("bus modbus: serial device required")
	}

	h := modbus.NewRTUClientHandler(cfg.Device)
	h.BaudRate = cfg.BaudRate
	h.DataBits = cfg.DataBits
	h.Parity = cfg.Parity
	h.StopBits = cfg.StopBits
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, err
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close closes the serial line.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ---- bus.Transport interface ----

func (c *Client) WriteSingleRegister(slave uint8, register, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = slave

	// The handler discards stale inter-frame bytes before each request, so a
	// timed-out peer cannot corrupt the next exchange.
	_, err := c.client.WriteSingleRegister(register, value)
	return classify(err)
}

func (c *Client) ReadHoldingRegisters(slave uint8, start, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = slave

	raw, err := c.client.ReadHoldingRegisters(start, qty)
	if err != nil {
		return nil, classify(err)
	}
	if len(raw) != int(qty)*2 {
		return nil, fmt.Errorf("%w: short register payload: got %d bytes want %d",
			bus.ErrProtocol, len(raw), int(qty)*2)
	}

	return unpackRegisters(raw), nil
}

// classify maps driver errors onto the bus taxonomy. Anything that is not a
// timeout is a protocol failure: both recover the same way upstream.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", bus.ErrTimeout, err)
	}
	// goburrow/serial reports read deadline expiry as a plain timeout error.
	if strings.Contains(err.Error(), "timeout") {
		return fmt.Errorf("%w: %v", bus.ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", bus.ErrProtocol, err)
}

// unpackRegisters splits a big-endian payload into 16-bit words.
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
