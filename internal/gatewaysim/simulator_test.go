package gatewaysim

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(topic string, retained bool, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, retained: retained, payload: payload})
	return nil
}

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testOptions() Options {
	return Options{
		Equipment:        []string{"Torre Fusora", "Linea 1"},
		HistoryPrefix:    "plcTemperaturas/historial",
		RealtimePrefix:   "plcTemperaturas/tiemporeal",
		HistoryInterval:  time.Minute,
		RealtimeInterval: time.Second,
		MinTemp:          700,
		MaxTemp:          750,
	}
}

func newTestSimulator(pub Publisher) (*Simulator, *manualClock) {
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	return newSimulator(testOptions(), pub, nil, rand.New(rand.NewPCG(1, 2)), clock.now), clock
}

func TestTopic(t *testing.T) {
	if got := Topic("plcTemperaturas/historial", "Torre Fusora"); got != "plcTemperaturas/historial/Torre_Fusora" {
		t.Fatalf("got %q", got)
	}
	if got := TopicPrefix("plcTemperaturas/tiemporeal/+"); got != "plcTemperaturas/tiemporeal" {
		t.Fatalf("got %q", got)
	}
}

func TestAdvance_RampsAndClamps(t *testing.T) {
	s, _ := newTestSimulator(&recordingPublisher{})

	ch := &channel{tempC: 700, target: 710}
	s.advance(ch, 2)
	if ch.tempC != 700+RampUpCPerSec*2 {
		t.Fatalf("ramp up: got %.2f", ch.tempC)
	}
	s.advance(ch, 10)
	if ch.tempC != 710 {
		t.Fatalf("expected clamp to target, got %.2f", ch.tempC)
	}

	ch = &channel{tempC: 740, target: 720}
	s.advance(ch, 1)
	if ch.tempC != 740-RampDownCPerSec {
		t.Fatalf("ramp down: got %.2f", ch.tempC)
	}

	ch = &channel{tempC: 720, target: 721}
	s.advance(ch, 1)
	if ch.tempC != 720 || ch.target < 700 || ch.target > 750 {
		t.Fatalf("settled channel should only retarget inside the band, got %+v", ch)
	}

	ch = &channel{tempC: 705, target: 730}
	s.advance(ch, 0)
	if ch.tempC != 705 {
		t.Fatalf("zero elapsed must not move, got %.2f", ch.tempC)
	}
}

func TestPublishHistory_RetainedPerEquipment(t *testing.T) {
	pub := &recordingPublisher{}
	s, clock := newTestSimulator(pub)
	clock.advance(time.Second)

	s.PublishHistory()

	if len(pub.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(pub.msgs))
	}
	wantTopics := []string{"plcTemperaturas/historial/Torre_Fusora", "plcTemperaturas/historial/Linea_1"}
	for i, m := range pub.msgs {
		if m.topic != wantTopics[i] || !m.retained {
			t.Fatalf("msg %d: topic=%q retained=%v", i, m.topic, m.retained)
		}
		var smp Sample
		if err := json.Unmarshal(m.payload, &smp); err != nil {
			t.Fatalf("payload %s: %v", m.payload, err)
		}
		if smp.Timestamp != 1700000001 {
			t.Fatalf("timestamp: got %v", smp.Timestamp)
		}
		if smp.Temperature < 700-NoiseC || smp.Temperature > 700+RampUpCPerSec+NoiseC {
			t.Fatalf("temperature out of range: %v", smp.Temperature)
		}
	}
}

func TestHandleControl_TogglesRealtime(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := newTestSimulator(pub)

	if s.Streaming() {
		t.Fatal("must start idle")
	}
	s.HandleControl("START")
	if !s.Streaming() {
		t.Fatal("START should enable realtime")
	}
	s.HandleControl("bogus")
	if !s.Streaming() {
		t.Fatal("unknown command must not change state")
	}

	s.PublishRealtime()
	if len(pub.msgs) != 2 || pub.msgs[0].retained || pub.msgs[0].topic != "plcTemperaturas/tiemporeal/Torre_Fusora" {
		t.Fatalf("unexpected realtime messages: %+v", pub.msgs)
	}

	s.HandleControl(" STOP\n")
	if s.Streaming() {
		t.Fatal("STOP should disable realtime")
	}
}

func TestPublishRound_ErrorsAreSkipped(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("not connected")}
	s, _ := newTestSimulator(pub)

	s.PublishHistory()
	if len(pub.msgs) != 0 {
		t.Fatalf("nothing should be recorded, got %d", len(pub.msgs))
	}
}
