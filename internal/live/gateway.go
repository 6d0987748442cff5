// Package live fans realtime telemetry out to WebSocket subscribers and
// drives the PLC gateway START/STOP commands from subscriber presence.
package live

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/metrics"
)

// Control commands published on subscriber-count edges.
const (
	CommandStart = "START"
	CommandStop  = "STOP"
)

const (
	DefaultStopDebounce = 100 * time.Millisecond
	ackText             = "Conexión WebSocket establecida"
)

// Subscriber is one live connection.
type Subscriber interface {
	ID() string
	Open() bool
	Send(msg []byte) error
}

// ControlPublisher delivers a control command to the PLC gateway.
type ControlPublisher interface {
	PublishControl(command string) error
}

type ackMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Gateway is Idle with no subscribers and Active otherwise. START goes out
// on the first subscriber; STOP goes out once the set has stayed empty for
// the debounce window. START and STOP always alternate.
type Gateway struct {
	publisher ControlPublisher
	debounce  time.Duration
	metrics   *metrics.Metrics
	log       *logger.Logger

	mu        sync.Mutex
	subs      map[string]Subscriber
	streaming bool
	stopTimer *time.Timer
	stopGen   uint64
	closed    bool

	// pending is appended under mu, so commands publish in decision order.
	// Appending never blocks, however slow the publisher is.
	pending []string
	wake    *sync.Cond
	stopped chan struct{}
}

func NewGateway(publisher ControlPublisher, debounce time.Duration, m *metrics.Metrics, log *logger.Logger) *Gateway {
	if debounce <= 0 {
		debounce = DefaultStopDebounce
	}
	g := &Gateway{
		publisher: publisher,
		debounce:  debounce,
		metrics:   m,
		log:       logger.OrNop(log).Named("live"),
		subs:      make(map[string]Subscriber),
		stopped:   make(chan struct{}),
	}
	g.wake = sync.NewCond(&g.mu)
	go g.publishLoop()
	return g
}

// publishLoop drains pending outside mu and exits once the gateway is
// closed and the queue is empty.
func (g *Gateway) publishLoop() {
	defer close(g.stopped)
	for {
		g.mu.Lock()
		for len(g.pending) == 0 && !g.closed {
			g.wake.Wait()
		}
		if len(g.pending) == 0 {
			g.mu.Unlock()
			return
		}
		cmd := g.pending[0]
		g.pending = g.pending[1:]
		g.mu.Unlock()

		if err := g.publisher.PublishControl(cmd); err != nil {
			g.log.Errorw("control_publish_failed", "command", cmd, "error", err)
		}
	}
}

// enqueue must be called with mu held.
func (g *Gateway) enqueue(cmd string) {
	if g.closed {
		return
	}
	g.log.Infow("control_command", "command", cmd, "queued", len(g.pending))
	g.pending = append(g.pending, cmd)
	g.wake.Signal()
}

// Register adds a subscriber. The first subscriber of an idle gateway
// triggers START; a subscriber arriving inside the STOP debounce window
// cancels the pending STOP instead.
func (g *Gateway) Register(s Subscriber) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.subs[s.ID()] = s
	n := len(g.subs)
	g.cancelStopLocked()
	if n == 1 && !g.streaming {
		g.streaming = true
		g.enqueue(CommandStart)
	}
	g.metrics.SetLiveClients(n)
	g.log.Infow("live_client_connected", "client", s.ID(), "clients", n)
}

// Unregister removes a subscriber. When the set becomes empty, STOP is
// scheduled after the debounce delay.
func (g *Gateway) Unregister(s Subscriber) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.subs[s.ID()]; !ok {
		return
	}
	delete(g.subs, s.ID())
	n := len(g.subs)
	g.metrics.SetLiveClients(n)
	g.log.Infow("live_client_disconnected", "client", s.ID(), "clients", n)

	if n == 0 && g.streaming && !g.closed {
		g.cancelStopLocked()
		gen := g.stopGen
		g.stopTimer = time.AfterFunc(g.debounce, func() { g.fireStop(gen) })
	}
}

func (g *Gateway) cancelStopLocked() {
	if g.stopTimer != nil {
		g.stopTimer.Stop()
		g.stopTimer = nil
	}
	g.stopGen++
}

// fireStop re-reads the subscriber count at fire time.
func (g *Gateway) fireStop(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.stopGen {
		return
	}
	g.stopTimer = nil
	if len(g.subs) > 0 || !g.streaming {
		return
	}
	g.streaming = false
	g.enqueue(CommandStop)
}

// Broadcast sends msg to every open subscriber and returns how many sends
// succeeded. Failures are logged and skipped.
func (g *Gateway) Broadcast(msg []byte) int {
	g.mu.Lock()
	subs := make([]Subscriber, 0, len(g.subs))
	for _, s := range g.subs {
		subs = append(subs, s)
	}
	g.mu.Unlock()

	sent := 0
	for _, s := range subs {
		if !s.Open() {
			continue
		}
		if err := s.Send(msg); err != nil {
			g.log.Warnw("live_send_failed", "client", s.ID(), "error", err)
			continue
		}
		sent++
	}
	return sent
}

// HandleClientMessage answers the handshake hello. Other text is ignored.
func (g *Gateway) HandleClientMessage(s Subscriber, text string) {
	switch strings.TrimSpace(text) {
	case "hello", "react-client":
		ack, _ := json.Marshal(ackMessage{Event: "connected", Data: ackText})
		if err := s.Send(ack); err != nil {
			g.log.Warnw("live_ack_failed", "client", s.ID(), "error", err)
		}
	default:
		g.log.Debugw("live_client_message_ignored", "client", s.ID())
	}
}

// Count returns the number of registered subscribers.
func (g *Gateway) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

// Close cancels a pending STOP, publishes STOP if the gateway is still
// streaming, and waits for queued commands to go out.
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.cancelStopLocked()
	if g.streaming {
		g.streaming = false
		g.enqueue(CommandStop)
	}
	g.closed = true
	g.wake.Broadcast()
	g.mu.Unlock()

	<-g.stopped
}
