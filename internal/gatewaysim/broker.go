package gatewaysim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // ms
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

type BrokerOptions struct {
	BrokerURL    string
	Username     string
	Password     string
	ClientID     string
	QoS          byte
	ControlTopic string
}

// Link is the simulator's broker connection.
type Link struct {
	client mqtt.Client
	opts   BrokerOptions
	log    *logger.Logger

	mu        sync.RWMutex
	onControl func(payload string)
}

// NewLink builds the client without connecting.
func NewLink(opts BrokerOptions, log *logger.Logger) *Link {
	l := &Link{opts: opts, log: logger.OrNop(log).Named("gatewaysim.mqtt")}

	clientID := opts.ClientID
	if clientID == "" {
		clientID = "plc-gateway-sim"
	}
	co := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(clientID + "-" + uuid.NewString()[:8]).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetOrderMatters(true)
	co.SetOnConnectHandler(l.subscribeControl)
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		l.log.Warnw("mqtt_connection_lost", "error", err)
	})
	l.client = mqtt.NewClient(co)
	return l
}

// OnControl sets the receiver of control payloads. Call before Connect.
func (l *Link) OnControl(fn func(payload string)) {
	l.mu.Lock()
	l.onControl = fn
	l.mu.Unlock()
}

// subscribeControl runs on every (re)connect.
func (l *Link) subscribeControl(c mqtt.Client) {
	l.log.Infow("mqtt_connected", "broker", l.opts.BrokerURL)
	t := c.Subscribe(l.opts.ControlTopic, l.opts.QoS, func(_ mqtt.Client, m mqtt.Message) {
		l.mu.RLock()
		fn := l.onControl
		l.mu.RUnlock()
		if fn != nil {
			fn(string(m.Payload()))
		}
	})
	if t.Wait() && t.Error() != nil {
		l.log.Errorw("mqtt_subscribe_failed", "topic", l.opts.ControlTopic, "error", t.Error())
	}
}

// Connect blocks until the first connection succeeds, fails, or ctx ends.
func (l *Link) Connect(ctx context.Context) error {
	token := l.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect %s: %w", l.opts.BrokerURL, err)
	}
	return nil
}

func (l *Link) Publish(topic string, retained bool, payload []byte) error {
	token := l.client.Publish(topic, l.opts.QoS, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (l *Link) Close() {
	l.client.Disconnect(disconnectQuiesce)
}
