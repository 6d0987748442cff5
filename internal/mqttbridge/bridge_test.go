package mqttbridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ---- Test doubles ----

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	done := make(chan struct{})
	close(done)
	return &fakeToken{err: err, done: done}
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type publishCall struct {
	topic   string
	qos     byte
	payload interface{}
}

// fakeClient implements the parts of mqtt.Client the bridge uses.
type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	connectErr   error
	publishErr   error
	published    []publishCall
	subscribes   []map[string]byte
	disconnected bool
}

func (c *fakeClient) Connect() mqtt.Token { return newToken(c.connectErr) }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, publishCall{topic: topic, qos: qos, payload: payload})
	return newToken(c.publishErr)
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribes = append(c.subscribes, filters)
	return newToken(nil)
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	c.disconnected = true
	c.mu.Unlock()
}

type saveCall struct {
	equipment string
	temp      float64
	ts        time.Time
}

type recorderStub struct {
	mu    sync.Mutex
	calls []saveCall
	err   error
}

func (r *recorderStub) Save(_ context.Context, equipment string, temp float64, ts time.Time) (models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, saveCall{equipment, temp, ts})
	if r.err != nil {
		return models.Reading{}, r.err
	}
	return models.Reading{Equipment: equipment, Temperature: temp, Timestamp: ts}, nil
}

type alertStub struct {
	calls []saveCall
}

func (a *alertStub) CheckAndNotify(_ context.Context, equipment string, temp float64) {
	a.calls = append(a.calls, saveCall{equipment: equipment, temp: temp})
}

func testOptions() Options {
	return Options{
		BrokerURL:     "tcp://localhost:1883",
		QoS:           1,
		HistoryTopic:  "plcTemperaturas/historial/+",
		RealtimeTopic: "plcTemperaturas/tiemporeal/+",
		ControlTopic:  "gatewayTemperaturas/control/tiemporeal",
	}
}

func newTestBridge(t *testing.T) (*Bridge, *fakeClient, *recorderStub, *alertStub) {
	t.Helper()
	rec := &recorderStub{}
	al := &alertStub{}
	b := New(testOptions(), rec, al, nil, nil)
	fc := &fakeClient{}
	b.client = fc
	return b, fc, rec, al
}

// ---- Tests ----

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		filter, topic string
		want          bool
	}{
		{"plcTemperaturas/historial/+", "plcTemperaturas/historial/Linea 1", true},
		{"plcTemperaturas/historial/+", "plcTemperaturas/historial/a/b", false},
		{"plcTemperaturas/historial/+", "plcTemperaturas/tiemporeal/Linea 1", false},
		{"plcTemperaturas/historial/+", "plcTemperaturas/historial", false},
		{"plcTemperaturas/#", "plcTemperaturas/historial/x", true},
		{"a/b", "a/b", true},
		{"", "a/b", false},
	}
	for _, tc := range tests {
		if got := TopicMatches(tc.filter, tc.topic); got != tc.want {
			t.Errorf("TopicMatches(%q, %q) = %v, want %v", tc.filter, tc.topic, got, tc.want)
		}
	}
}

func TestHandleMessage_HistorySavesThenChecksAlerts(t *testing.T) {
	b, _, rec, al := newTestBridge(t)

	b.HandleMessage(context.Background(), "plcTemperaturas/historial/Linea 1",
		[]byte(`{"equipo":"Linea 1","temperatura":725.5,"timestamp":1700000000}`))

	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 save, got %d", len(rec.calls))
	}
	got := rec.calls[0]
	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	if got.equipment != "Linea 1" || got.temp != 725.5 || !got.ts.Equal(want) {
		t.Fatalf("unexpected save: %+v", got)
	}
	if len(al.calls) != 1 || al.calls[0].equipment != "Linea 1" || al.calls[0].temp != 725.5 {
		t.Fatalf("expected one alert check, got %+v", al.calls)
	}
}

func TestHandleMessage_HistoryAcceptsNumericString(t *testing.T) {
	b, _, rec, _ := newTestBridge(t)

	b.HandleMessage(context.Background(), "plcTemperaturas/historial/x",
		[]byte(`{"equipo":"Torre Fusora","temperatura":"701.25","timestamp":1700000000.5}`))

	if len(rec.calls) != 1 || rec.calls[0].temp != 701.25 {
		t.Fatalf("expected numeric string to be saved, got %+v", rec.calls)
	}
	if rec.calls[0].ts.Nanosecond() != 500000000 {
		t.Fatalf("expected fractional seconds kept, got %v", rec.calls[0].ts)
	}
}

func TestHandleMessage_InvalidHistoryIsDropped(t *testing.T) {
	payloads := map[string]string{
		"null temperature":    `{"equipo":"Linea 1","temperatura":null,"timestamp":1700000000}`,
		"missing temperature": `{"equipo":"Linea 1","timestamp":1700000000}`,
		"text temperature":    `{"equipo":"Linea 1","temperatura":"abc","timestamp":1700000000}`,
		"NaN string":          `{"equipo":"Linea 1","temperatura":"NaN","timestamp":1700000000}`,
		"object temperature":  `{"equipo":"Linea 1","temperatura":{"v":1},"timestamp":1700000000}`,
		"missing equipment":   `{"temperatura":700,"timestamp":1700000000}`,
		"missing timestamp":   `{"equipo":"Linea 1","temperatura":700}`,
		"not json":            `temperatura=700`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			b, _, rec, al := newTestBridge(t)
			b.HandleMessage(context.Background(), "plcTemperaturas/historial/Linea 1", []byte(payload))

			if len(rec.calls) != 0 {
				t.Fatalf("expected no save, got %+v", rec.calls)
			}
			if len(al.calls) != 0 {
				t.Fatalf("expected no alert check, got %+v", al.calls)
			}
		})
	}
}

func TestHandleMessage_SaveErrorSkipsAlertAndContinues(t *testing.T) {
	b, _, rec, al := newTestBridge(t)
	rec.err = errors.New("database is locked")

	msg := []byte(`{"equipo":"Linea 1","temperatura":650,"timestamp":1700000000}`)
	b.HandleMessage(context.Background(), "plcTemperaturas/historial/Linea 1", msg)
	if len(al.calls) != 0 {
		t.Fatalf("alert must not run after a failed save, got %+v", al.calls)
	}

	rec.err = nil
	b.HandleMessage(context.Background(), "plcTemperaturas/historial/Linea 1", msg)
	if len(rec.calls) != 2 || len(al.calls) != 1 {
		t.Fatalf("expected ingestion to continue: saves=%d alerts=%d", len(rec.calls), len(al.calls))
	}
}

func TestHandleMessage_Realtime(t *testing.T) {
	b, _, rec, _ := newTestBridge(t)
	var forwarded [][]byte
	b.OnRealtime(func(p []byte) { forwarded = append(forwarded, p) })

	valid := []byte(`{"equipo":"Linea 1","temperatura":731.2}`)
	b.HandleMessage(context.Background(), "plcTemperaturas/tiemporeal/Linea 1", valid)
	b.HandleMessage(context.Background(), "plcTemperaturas/tiemporeal/Linea 1", []byte(`{broken`))
	b.HandleMessage(context.Background(), "otro/topico", valid)

	if len(forwarded) != 1 {
		t.Fatalf("expected 1 forwarded payload, got %d", len(forwarded))
	}
	if string(forwarded[0]) != string(valid) {
		t.Fatalf("payload must be forwarded verbatim, got %s", forwarded[0])
	}
	if len(rec.calls) != 0 {
		t.Fatalf("realtime messages must not be persisted")
	}
}

func TestOnConnect_SubscribesBothTopicsInOneCall(t *testing.T) {
	b, fc, _, _ := newTestBridge(t)

	b.onConnect(fc)

	if b.State() != StateConnected {
		t.Fatalf("expected connected, got %s", b.State())
	}
	if len(fc.subscribes) != 1 {
		t.Fatalf("expected one SubscribeMultiple call, got %d", len(fc.subscribes))
	}
	filters := fc.subscribes[0]
	if len(filters) != 2 || filters["plcTemperaturas/historial/+"] != 1 || filters["plcTemperaturas/tiemporeal/+"] != 1 {
		t.Fatalf("unexpected filters: %v", filters)
	}

	b.onConnectionLost(fc, errors.New("EOF"))
	if b.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", b.State())
	}
}

func TestPublishControl(t *testing.T) {
	b, fc, _, _ := newTestBridge(t)

	if err := b.PublishControl(CommandStart); err != nil {
		t.Fatalf("PublishControl: %v", err)
	}
	if len(fc.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(fc.published))
	}
	p := fc.published[0]
	if p.topic != "gatewayTemperaturas/control/tiemporeal" || p.payload != "START" {
		t.Fatalf("unexpected publish: %+v", p)
	}

	fc.publishErr = errors.New("not connected")
	if err := b.PublishControl(CommandStop); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestConnect_FailureSetsErrorState(t *testing.T) {
	b, fc, _, _ := newTestBridge(t)
	fc.connectErr = errors.New("connection refused")

	b.Connect(context.Background())

	deadline := time.Now().Add(time.Second)
	for b.State() != StateError {
		if time.Now().After(deadline) {
			t.Fatalf("expected error state, got %s", b.State())
		}
		time.Sleep(time.Millisecond)
	}

	b.Close()
	if !fc.disconnected || b.State() != StateDisconnected {
		t.Fatalf("expected Close to disconnect, state=%s", b.State())
	}
}

func TestState_String(t *testing.T) {
	want := map[State]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateConnected:    "connected",
		StateError:        "error",
		State(9):          "state(9)",
	}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("State(%d).String() = %q, want %q", int32(s), s.String(), w)
		}
	}
}
