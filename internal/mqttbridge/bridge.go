// Package mqttbridge owns the broker connection: it subscribes to the history
// and realtime topic families, routes their payloads, and publishes gateway
// control commands.
package mqttbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/metrics"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Control commands understood by the PLC gateway.
const (
	CommandStart = "START"
	CommandStop  = "STOP"
)

const (
	subscribeTimeout  = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // ms
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// State is the lifecycle of the broker connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Recorder persists one history reading.
type Recorder interface {
	Save(ctx context.Context, equipment string, temperature float64, ts time.Time) (models.Reading, error)
}

// AlertChecker is told about every persisted reading.
type AlertChecker interface {
	CheckAndNotify(ctx context.Context, equipment string, temperature float64)
}

type Options struct {
	BrokerURL            string
	Username             string
	Password             string
	ClientID             string
	QoS                  byte
	HistoryTopic         string
	RealtimeTopic        string
	ControlTopic         string
	ConnectRetryInterval time.Duration
	MaxReconnectInterval time.Duration
}

type Bridge struct {
	opts    Options
	client  mqtt.Client
	history Recorder
	alerts  AlertChecker
	metrics *metrics.Metrics
	log     *logger.Logger

	state atomic.Int32

	mu       sync.RWMutex
	realtime func(payload []byte)
}

func New(opts Options, history Recorder, alerts AlertChecker, m *metrics.Metrics, log *logger.Logger) *Bridge {
	b := &Bridge{
		opts:    opts,
		history: history,
		alerts:  alerts,
		metrics: m,
		log:     logger.OrNop(log).Named("mqtt"),
	}
	b.client = mqtt.NewClient(b.clientOptions())
	return b
}

func (b *Bridge) clientOptions() *mqtt.ClientOptions {
	clientID := b.opts.ClientID
	if clientID == "" {
		clientID = "thermal-relay"
	}
	// broker rejects duplicate client ids, so each process gets its own suffix
	clientID = clientID + "-" + uuid.NewString()[:8]

	opts := mqtt.NewClientOptions().
		AddBroker(b.opts.BrokerURL).
		SetClientID(clientID).
		SetUsername(b.opts.Username).
		SetPassword(b.opts.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(true)
	if b.opts.ConnectRetryInterval > 0 {
		opts.SetConnectRetryInterval(b.opts.ConnectRetryInterval)
	}
	if b.opts.MaxReconnectInterval > 0 {
		opts.SetMaxReconnectInterval(b.opts.MaxReconnectInterval)
	}
	opts.SetOnConnectHandler(b.onConnect)
	opts.SetConnectionLostHandler(b.onConnectionLost)
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		b.setState(StateConnecting)
		b.log.Infow("mqtt_reconnecting", "broker", b.opts.BrokerURL)
	})
	return opts
}

// OnRealtime sets the receiver of realtime payloads. Call before Connect.
func (b *Bridge) OnRealtime(fn func(payload []byte)) {
	b.mu.Lock()
	b.realtime = fn
	b.mu.Unlock()
}

// Connect starts connecting in the background and returns immediately.
// paho keeps retrying until the broker is reachable.
func (b *Bridge) Connect(ctx context.Context) {
	b.setState(StateConnecting)
	b.log.Infow("mqtt_connecting", "broker", b.opts.BrokerURL)
	token := b.client.Connect()
	go func() {
		select {
		case <-token.Done():
		case <-ctx.Done():
			return
		}
		if err := token.Error(); err != nil {
			b.setState(StateError)
			b.log.Errorw("mqtt_connect_failed", "broker", b.opts.BrokerURL, "error", err)
		}
	}()
}

// onConnect runs on every (re)connect and subscribes both topic families
// in one request.
func (b *Bridge) onConnect(c mqtt.Client) {
	b.setState(StateConnected)
	b.log.Infow("mqtt_connected", "broker", b.opts.BrokerURL)

	filters := map[string]byte{
		b.opts.HistoryTopic:  b.opts.QoS,
		b.opts.RealtimeTopic: b.opts.QoS,
	}
	token := c.SubscribeMultiple(filters, b.onMessage)
	if !token.WaitTimeout(subscribeTimeout) {
		b.log.Errorw("mqtt_subscribe_timeout", "history", b.opts.HistoryTopic, "realtime", b.opts.RealtimeTopic)
		return
	}
	if err := token.Error(); err != nil {
		b.log.Errorw("mqtt_subscribe_failed", "error", err)
		return
	}
	b.log.Infow("mqtt_subscribed", "history", b.opts.HistoryTopic, "realtime", b.opts.RealtimeTopic)
}

func (b *Bridge) onConnectionLost(_ mqtt.Client, err error) {
	b.setState(StateDisconnected)
	b.log.Warnw("mqtt_connection_lost", "error", err)
}

func (b *Bridge) onMessage(_ mqtt.Client, msg mqtt.Message) {
	b.HandleMessage(context.Background(), msg.Topic(), msg.Payload())
}

// PublishControl sends START or STOP to the control topic as a bare string.
func (b *Bridge) PublishControl(command string) error {
	token := b.client.Publish(b.opts.ControlTopic, b.opts.QoS, false, command)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s to %s: %w", command, b.opts.ControlTopic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", command, b.opts.ControlTopic, err)
	}
	b.metrics.ControlPublished(command)
	b.log.Infow("control_published", "topic", b.opts.ControlTopic, "command", command)
	return nil
}

func (b *Bridge) State() State {
	return State(b.state.Load())
}

func (b *Bridge) setState(s State) {
	b.state.Store(int32(s))
	b.metrics.SetBrokerConnected(s == StateConnected)
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	b.client.Disconnect(disconnectQuiesce)
	b.setState(StateDisconnected)
	b.log.Infow("mqtt_disconnected")
}
