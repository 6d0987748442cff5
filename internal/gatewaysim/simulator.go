// Package gatewaysim stands in for the PLC gateway: it publishes thermocouple
// readings on the history and realtime topics and obeys START/STOP on the
// control topic.
package gatewaysim

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
)

// ----------- Simulation constants -----------
const (
	AmbientC        = 25.0 // ambient temperature °C
	RampUpCPerSec   = 3.0  // °C per second while heating
	RampDownCPerSec = 5.0  // °C per second while cooling
	SoakToleranceC  = 2.0  // °C band for "at target"
	NoiseC          = 0.5  // sensor jitter amplitude °C
)

// Commands accepted on the control topic.
const (
	CommandStart = "START"
	CommandStop  = "STOP"
)

// Publisher sends one payload to the broker.
type Publisher interface {
	Publish(topic string, retained bool, payload []byte) error
}

type Options struct {
	Equipment        []string
	HistoryPrefix    string // e.g. plcTemperaturas/historial
	RealtimePrefix   string // e.g. plcTemperaturas/tiemporeal
	HistoryInterval  time.Duration
	RealtimeInterval time.Duration
	MinTemp          float64
	MaxTemp          float64
}

// Sample is the wire shape of one published reading.
type Sample struct {
	Timestamp   float64 `json:"timestamp"` // unix seconds
	Equipment   string  `json:"equipo"`
	Temperature float64 `json:"temperatura"`
}

type channel struct {
	name   string
	tempC  float64
	target float64
}

// Simulator keeps one thermal channel per equipment. Each channel ramps
// toward a setpoint inside [MinTemp, MaxTemp] and picks a new one once it
// settles.
type Simulator struct {
	opts Options
	pub  Publisher
	log  *logger.Logger
	now  func() time.Time

	mu       sync.Mutex
	rng      *rand.Rand
	channels []*channel
	lastStep time.Time

	realtime atomic.Bool
}

func New(opts Options, pub Publisher, log *logger.Logger) *Simulator {
	return newSimulator(opts, pub, log, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)), time.Now)
}

func newSimulator(opts Options, pub Publisher, log *logger.Logger, rng *rand.Rand, now func() time.Time) *Simulator {
	s := &Simulator{
		opts: opts,
		pub:  pub,
		log:  logger.OrNop(log).Named("gatewaysim"),
		now:  now,
		rng:  rng,
	}
	for _, name := range opts.Equipment {
		// channels boot at the bottom of the band
		s.channels = append(s.channels, &channel{name: name, tempC: opts.MinTemp, target: s.pickTarget()})
	}
	s.lastStep = now()
	return s
}

// HandleControl applies a control-topic payload. Unknown commands are ignored.
func (s *Simulator) HandleControl(payload string) {
	switch strings.TrimSpace(payload) {
	case CommandStart:
		if !s.realtime.Swap(true) {
			s.log.Infow("realtime_enabled")
		}
	case CommandStop:
		if s.realtime.Swap(false) {
			s.log.Infow("realtime_disabled")
		}
	default:
		s.log.Warnw("control_unknown_command", "payload", payload)
	}
}

// Streaming reports whether realtime publishing is on.
func (s *Simulator) Streaming() bool {
	return s.realtime.Load()
}

// Run publishes one history round immediately, then on every history tick,
// and a realtime round on every realtime tick while streaming. It returns
// when ctx is canceled.
func (s *Simulator) Run(ctx context.Context) {
	history := time.NewTicker(s.opts.HistoryInterval)
	defer history.Stop()
	realtime := time.NewTicker(s.opts.RealtimeInterval)
	defer realtime.Stop()

	s.PublishHistory()
	for {
		select {
		case <-ctx.Done():
			return
		case <-history.C:
			s.PublishHistory()
		case <-realtime.C:
			if s.Streaming() {
				s.PublishRealtime()
			}
		}
	}
}

// PublishHistory publishes a retained reading per equipment.
func (s *Simulator) PublishHistory() {
	s.publishRound(s.opts.HistoryPrefix, true)
}

// PublishRealtime publishes a non-retained reading per equipment.
func (s *Simulator) PublishRealtime() {
	s.publishRound(s.opts.RealtimePrefix, false)
}

func (s *Simulator) publishRound(prefix string, retained bool) {
	for _, smp := range s.Step() {
		payload, err := json.Marshal(smp)
		if err != nil {
			s.log.Errorw("sample_encode_failed", "equipment", smp.Equipment, "error", err)
			continue
		}
		topic := Topic(prefix, smp.Equipment)
		if err := s.pub.Publish(topic, retained, payload); err != nil {
			s.log.Errorw("sample_publish_failed", "topic", topic, "error", err)
			continue
		}
		s.log.Debugw("sample_published", "topic", topic, "temperature", smp.Temperature)
	}
}

// Step advances every channel by the time since the previous step and
// returns the resulting samples.
func (s *Simulator) Step() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	elapsed := now.Sub(s.lastStep).Seconds()
	s.lastStep = now
	ts := float64(now.UnixNano()) / float64(time.Second)

	out := make([]Sample, 0, len(s.channels))
	for _, ch := range s.channels {
		s.advance(ch, elapsed)
		out = append(out, Sample{
			Timestamp:   ts,
			Equipment:   ch.name,
			Temperature: round1(ch.tempC + (s.rng.Float64()*2-1)*NoiseC),
		})
	}
	return out
}

// advance ramps toward the setpoint, clamping at the target. A settled
// channel gets a new setpoint.
func (s *Simulator) advance(ch *channel, elapsed float64) {
	if elapsed <= 0 {
		return
	}
	switch {
	case math.Abs(ch.tempC-ch.target) <= SoakToleranceC:
		ch.target = s.pickTarget()
	case ch.tempC < ch.target:
		ch.tempC = math.Min(ch.tempC+RampUpCPerSec*elapsed, ch.target)
	default:
		ch.tempC = math.Max(ch.tempC-RampDownCPerSec*elapsed, math.Max(ch.target, AmbientC))
	}
}

func (s *Simulator) pickTarget() float64 {
	return s.opts.MinTemp + s.rng.Float64()*(s.opts.MaxTemp-s.opts.MinTemp)
}

// Topic builds "<prefix>/<equipment>" with spaces replaced by underscores.
func Topic(prefix, equipment string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strings.ReplaceAll(equipment, " ", "_")
}

// TopicPrefix strips a trailing single-level wildcard from a subscription
// filter, so the backend's filters can be reused for publishing.
func TopicPrefix(filter string) string {
	return strings.TrimSuffix(strings.TrimSuffix(filter, "+"), "/")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
