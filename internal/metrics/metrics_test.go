package metrics

import (
	"fmt"
	"testing"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.MessageReceived("history")
	m.MessageRejected("invalid_json")
	m.ReadingSaved("Linea 1", 720)
	m.RealtimeForwarded()
	m.SetBrokerConnected(true)
	m.SetLiveClients(3)
	m.ControlPublished("START")
	m.AlertSent(models.AlertTooLow)
	m.AlertFailed()
	m.SetBreakerState(2)
	m.ReadingsPurged(10)
}

func TestMetrics_ReadingSavedUsesNormalizedLabel(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ReadingSaved("Linea 1", 720)
	m.ReadingSaved("Linea  1", 730.5)

	if got := testutil.ToFloat64(m.readingsSaved.WithLabelValues("linea_1")); got != 2 {
		t.Fatalf("readings_saved{linea_1}: want 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastTemperature.WithLabelValues("linea_1")); got != 730.5 {
		t.Fatalf("last_temperature{linea_1}: want 730.5, got %v", got)
	}
}

func TestMetrics_EquipmentLabelsAreBounded(t *testing.T) {
	m := New(prometheus.NewRegistry())

	for i := 0; i < MaxEquipmentLabels+50; i++ {
		m.ReadingSaved(fmt.Sprintf("Equipo %d", i), 700)
	}
	m.ReadingSaved("Equipo 0", 710)

	if got := testutil.CollectAndCount(m.readingsSaved); got != MaxEquipmentLabels+1 {
		t.Fatalf("readings_saved series: want %d, got %d", MaxEquipmentLabels+1, got)
	}
	if got := testutil.ToFloat64(m.readingsSaved.WithLabelValues(OverflowLabel)); got != 50 {
		t.Fatalf("readings_saved{other}: want 50, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastTemperature.WithLabelValues("equipo_0")); got != 710 {
		t.Fatalf("known equipment keeps its own series, got %v", got)
	}
}

func TestMetrics_GaugesAndCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetBrokerConnected(true)
	if got := testutil.ToFloat64(m.brokerConnected); got != 1 {
		t.Fatalf("mqtt_connected: want 1, got %v", got)
	}
	m.SetBrokerConnected(false)
	if got := testutil.ToFloat64(m.brokerConnected); got != 0 {
		t.Fatalf("mqtt_connected: want 0, got %v", got)
	}

	m.SetLiveClients(4)
	if got := testutil.ToFloat64(m.liveClients); got != 4 {
		t.Fatalf("live_clients: want 4, got %v", got)
	}

	m.ControlPublished("START")
	m.ControlPublished("STOP")
	m.ControlPublished("START")
	if got := testutil.ToFloat64(m.controlCommands.WithLabelValues("START")); got != 2 {
		t.Fatalf("control_commands{START}: want 2, got %v", got)
	}

	m.ReadingsPurged(0)
	m.ReadingsPurged(5)
	if got := testutil.ToFloat64(m.readingsPurged); got != 5 {
		t.Fatalf("readings_purged: want 5, got %v", got)
	}
}
