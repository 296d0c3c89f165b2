package mqttsource

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pingcard/pingcard/internal/telemetry"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type recordingSink struct {
	got []*telemetry.Snapshot
}

func (s *recordingSink) Publish(snap *telemetry.Snapshot) {
	s.got = append(s.got, snap)
}

func newTestSource(t *testing.T, sink telemetry.Sink) *Source {
	t.Helper()
	s, err := New("tcp://localhost:1883", "pingcard/telemetry", sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew_Validates(t *testing.T) {
	sink := &recordingSink{}
	if _, err := New("", "topic", sink, nil); err == nil {
		t.Fatal("expected error for empty broker")
	}
	if _, err := New("tcp://localhost:1883", " ", sink, nil); err == nil {
		t.Fatal("expected error for empty topic")
	}
	if _, err := New("tcp://localhost:1883", "topic", nil, nil); err == nil {
		t.Fatal("expected error for nil sink")
	}
}

func TestHandleMessage_PublishesObjects(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSource(t, sink)

	s.handleMessage(nil, fakeMessage{topic: "pingcard/telemetry", payload: []byte(`{"raw":{"ServerName_s":"Alpha"}}`)})

	if len(sink.got) != 1 {
		t.Fatalf("published = %d, want 1", len(sink.got))
	}
	if name, _ := sink.got[0].ServerName(); name != "Alpha" {
		t.Fatalf("ServerName = %q, want Alpha", name)
	}
}

func TestHandleMessage_DropsInvalidPayloads(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSource(t, sink)

	for _, payload := range []string{``, `not json`, `[1,2]`, `42`} {
		s.handleMessage(nil, fakeMessage{topic: "pingcard/telemetry", payload: []byte(payload)})
	}
	if len(sink.got) != 0 {
		t.Fatalf("published = %d, want 0", len(sink.got))
	}
}

func TestClientOptions_RetriesInitialConnect(t *testing.T) {
	opts := newTestSource(t, &recordingSink{}).clientOptions()

	if !opts.ConnectRetry {
		t.Fatal("ConnectRetry = false, want an unreachable broker at startup to be retried")
	}
	if opts.ConnectRetryInterval != connectRetryInterval {
		t.Fatalf("ConnectRetryInterval = %s, want %s", opts.ConnectRetryInterval, connectRetryInterval)
	}
	if !opts.AutoReconnect {
		t.Fatal("AutoReconnect = false, want true")
	}
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://localhost:1883" {
		t.Fatalf("Servers = %v, want [tcp://localhost:1883]", opts.Servers)
	}
	if !strings.HasPrefix(opts.ClientID, "pingcard-") {
		t.Fatalf("ClientID = %q, want pingcard- prefix", opts.ClientID)
	}
}
