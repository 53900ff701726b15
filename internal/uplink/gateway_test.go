// internal/uplink/gateway_test.go
package uplink

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hydromon/stationd/internal/record"
)

// fakePort scripts reply lines and captures everything the gateway writes.
type fakePort struct {
	replies bytes.Buffer
	written bytes.Buffer
	closed  bool
}

func (f *fakePort) Read(p []byte) (int, error)  { return f.replies.Read(p) }
func (f *fakePort) Write(p []byte) (int, error) { return f.written.Write(p) }
func (f *fakePort) Close() error                { f.closed = true; return nil }

func (f *fakePort) reply(lines ...string) {
	for _, l := range lines {
		f.replies.WriteString(l + "\n")
	}
}

func (f *fakePort) requests(t *testing.T) []Request {
	t.Helper()
	var out []Request
	for _, l := range strings.Split(strings.TrimRight(f.written.String(), "\n"), "\n") {
		var r Request
		if err := json.Unmarshal([]byte(l), &r); err != nil {
			t.Fatalf("malformed request line %q: %v", l, err)
		}
		out = append(out, r)
	}
	return out
}

// ---- tests ----

func TestTransaction_RoundTrip(t *testing.T) {
	port := &fakePort{}
	port.reply(`{"total":3}`)
	g := newGateway(port, zerolog.Nop())

	rsp, err := g.Transaction(Request{"req": "card.version"})
	if err != nil {
		t.Fatalf("Transaction err=%v", err)
	}
	if rsp["total"] != 3.0 {
		t.Fatalf("rsp=%v", rsp)
	}

	reqs := port.requests(t)
	if reqs[0]["req"] != "card.version" {
		t.Fatalf("request=%v", reqs[0])
	}
}

func TestTransaction_GatewayError(t *testing.T) {
	port := &fakePort{}
	port.reply(`{"err":"product UID is not set"}`)
	g := newGateway(port, zerolog.Nop())

	if _, err := g.Transaction(Request{"req": "hub.sync"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestSendReading_NoteShape(t *testing.T) {
	port := &fakePort{}
	port.reply(`{}`)
	g := newGateway(port, zerolog.Nop())

	fields := map[string]record.Reading{
		"X_t": record.Value(42.0),
		"X_u": record.Absent(),
	}
	if err := g.SendReading("2025-01-01T12:00:00Z", fields, map[string]int{"reads_ok": 1}); err != nil {
		t.Fatalf("SendReading err=%v", err)
	}

	req := port.requests(t)[0]
	if req["req"] != "note.add" || req["file"] != "data.qo" || req["sync"] != true {
		t.Fatalf("request envelope=%v", req)
	}

	body := req["body"].(map[string]any)
	if body["timestamp"] != "2025-01-01T12:00:00Z" {
		t.Fatalf("body=%v", body)
	}
	data := body["data"].(map[string]any)
	if data["X_t"] != 42.0 {
		t.Fatalf("data=%v", data)
	}
	if v, ok := data["X_u"]; !ok || v != nil {
		t.Fatalf("absent reading should uplink as null, got %v ok=%v", v, ok)
	}
}

func TestPendingFirmware_None(t *testing.T) {
	port := &fakePort{}
	port.reply(`{}`, `{}`)
	g := newGateway(port, zerolog.Nop())

	_, pending, err := g.PendingFirmware("stationd")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if pending {
		t.Fatalf("expected no pending firmware")
	}
}

func TestPendingFirmware_Fetch(t *testing.T) {
	port := &fakePort{}
	port.reply(`{}`, `{"pending":true}`, `{"body":"new firmware"}`)
	g := newGateway(port, zerolog.Nop())

	body, pending, err := g.PendingFirmware("stationd")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !pending || string(body) != "new firmware" {
		t.Fatalf("pending=%v body=%q", pending, body)
	}

	reqs := port.requests(t)
	if len(reqs) != 3 || reqs[0]["req"] != "card.dfu" || reqs[1]["req"] != "hub.firmware" || reqs[2]["req"] != "hub.firmware.get" {
		t.Fatalf("requests=%v", reqs)
	}
}

func TestPendingFirmware_MissingBody(t *testing.T) {
	port := &fakePort{}
	port.reply(`{}`, `{"pending":true}`, `{}`)
	g := newGateway(port, zerolog.Nop())

	if _, _, err := g.PendingFirmware("stationd"); err == nil {
		t.Fatalf("expected error for missing body")
	}
}
