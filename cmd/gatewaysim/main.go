// Command gatewaysim publishes simulated thermocouple readings the way the
// PLC gateway does, for running the backend without plant hardware.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/config"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/gatewaysim"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
)

func main() {
	cfg, err := config.LoadSimulator("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	link := gatewaysim.NewLink(gatewaysim.BrokerOptions{
		BrokerURL:    cfg.MQTT.BrokerURL,
		Username:     cfg.MQTT.Username,
		Password:     cfg.MQTT.Password,
		ClientID:     "plc-gateway-sim",
		QoS:          cfg.MQTT.QoS,
		ControlTopic: cfg.MQTT.ControlTopic,
	}, log)
	sim := gatewaysim.New(gatewaysim.Options{
		Equipment:        cfg.Simulator.Equipment,
		HistoryPrefix:    gatewaysim.TopicPrefix(cfg.MQTT.HistoryTopic),
		RealtimePrefix:   gatewaysim.TopicPrefix(cfg.MQTT.RealtimeTopic),
		HistoryInterval:  cfg.Simulator.HistoryInterval,
		RealtimeInterval: cfg.Simulator.RealtimeInterval,
		MinTemp:          cfg.Simulator.MinTemp,
		MaxTemp:          cfg.Simulator.MaxTemp,
	}, link, log)
	link.OnControl(sim.HandleControl)

	if err := link.Connect(ctx); err != nil {
		log.Fatalw("broker connect failed", "broker", cfg.MQTT.BrokerURL, "err", err)
	}
	defer link.Close()

	log.Infow("gateway simulator running", "equipment", cfg.Simulator.Equipment)
	sim.Run(ctx)
	log.Infow("gateway simulator stopped")
}
