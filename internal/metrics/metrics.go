// Package metrics holds the Prometheus collectors of the relay. Every method
// is safe on a nil *Metrics, so components can run without instrumentation.
package metrics

import (
	"sync"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "thermal"

// Equipment labels come from publisher-controlled payloads. Past
// MaxEquipmentLabels distinct names, new ones share OverflowLabel.
const (
	MaxEquipmentLabels = 100
	OverflowLabel      = "other"
)

type Metrics struct {
	messagesReceived  *prometheus.CounterVec
	messagesRejected  *prometheus.CounterVec
	readingsSaved     *prometheus.CounterVec
	lastTemperature   *prometheus.GaugeVec
	realtimeForwarded prometheus.Counter
	brokerConnected   prometheus.Gauge
	liveClients       prometheus.Gauge
	controlCommands   *prometheus.CounterVec
	alertsSent        *prometheus.CounterVec
	alertFailures     prometheus.Counter
	breakerState      prometheus.Gauge
	readingsPurged    prometheus.Counter

	labelsMu        sync.Mutex
	equipmentLabels map[string]struct{}
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		equipmentLabels: make(map[string]struct{}),
		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "mqtt_messages_received_total",
			Help: "MQTT messages received, by stream (history|realtime|other).",
		}, []string{"stream"}),
		messagesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "mqtt_messages_rejected_total",
			Help: "MQTT messages dropped, by reason.",
		}, []string{"reason"}),
		readingsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "readings_saved_total",
			Help: "Readings persisted, by normalized equipment name.",
		}, []string{"equipment"}),
		lastTemperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_temperature_celsius",
			Help: "Last persisted temperature, by normalized equipment name.",
		}, []string{"equipment"}),
		realtimeForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "realtime_messages_forwarded_total",
			Help: "Realtime payloads handed to the live gateway.",
		}),
		brokerConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "mqtt_connected",
			Help: "1 while the broker connection is up.",
		}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "live_clients",
			Help: "Connected live subscribers.",
		}),
		controlCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "control_commands_total",
			Help: "Control commands published to the gateway, by command.",
		}, []string{"command"}),
		alertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "alerts_sent_total",
			Help: "Alert notifications delivered, by kind.",
		}, []string{"kind"}),
		alertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "alert_failures_total",
			Help: "Alert notifications that could not be delivered.",
		}),
		breakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "alert_breaker_state",
			Help: "Notifier circuit breaker state: 0=closed,1=half-open,2=open.",
		}),
		readingsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "readings_purged_total",
			Help: "Readings deleted by the retention worker.",
		}),
	}
	reg.MustRegister(
		m.messagesReceived, m.messagesRejected, m.readingsSaved, m.lastTemperature,
		m.realtimeForwarded, m.brokerConnected, m.liveClients, m.controlCommands,
		m.alertsSent, m.alertFailures, m.breakerState, m.readingsPurged,
	)
	return m
}

func (m *Metrics) MessageReceived(stream string) {
	if m == nil {
		return
	}
	m.messagesReceived.WithLabelValues(stream).Inc()
}

func (m *Metrics) MessageRejected(reason string) {
	if m == nil {
		return
	}
	m.messagesRejected.WithLabelValues(reason).Inc()
}

// ReadingSaved labels by the normalized equipment name.
func (m *Metrics) ReadingSaved(equipment string, temperature float64) {
	if m == nil {
		return
	}
	label := m.equipmentLabel(equipment)
	m.readingsSaved.WithLabelValues(label).Inc()
	m.lastTemperature.WithLabelValues(label).Set(temperature)
}

func (m *Metrics) equipmentLabel(equipment string) string {
	label := models.NormalizeEquipmentName(equipment)
	m.labelsMu.Lock()
	defer m.labelsMu.Unlock()
	if _, ok := m.equipmentLabels[label]; ok {
		return label
	}
	if len(m.equipmentLabels) >= MaxEquipmentLabels {
		return OverflowLabel
	}
	m.equipmentLabels[label] = struct{}{}
	return label
}

func (m *Metrics) RealtimeForwarded() {
	if m == nil {
		return
	}
	m.realtimeForwarded.Inc()
}

func (m *Metrics) SetBrokerConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.brokerConnected.Set(1)
		return
	}
	m.brokerConnected.Set(0)
}

func (m *Metrics) SetLiveClients(n int) {
	if m == nil {
		return
	}
	m.liveClients.Set(float64(n))
}

func (m *Metrics) ControlPublished(command string) {
	if m == nil {
		return
	}
	m.controlCommands.WithLabelValues(command).Inc()
}

func (m *Metrics) AlertSent(kind models.AlertKind) {
	if m == nil {
		return
	}
	m.alertsSent.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) AlertFailed() {
	if m == nil {
		return
	}
	m.alertFailures.Inc()
}

func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.breakerState.Set(float64(state))
}

func (m *Metrics) ReadingsPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.readingsPurged.Add(float64(n))
}
