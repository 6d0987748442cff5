package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/OscarR093/monitoreoTermico-sub000/docs"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/alerts"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/config"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/handlers"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/live"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/metrics"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/mqttbridge"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/repository"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/repository/db"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/server"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// @title                       Monitoreo Térmico API
// @version                     1.0
// @description                 Thermocouple telemetry: history queries, alerts and the live WebSocket stream.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml (+ env overrides)
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()
	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// open DB
	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		SigningKey:    cfg.Auth.SigningKey,
		TokenTTL:      cfg.Auth.TokenTTL,
		RetentionDays: cfg.Retention.Days,
	}, m, log)
	ensureSuperUser(services, cfg.Auth.SuperUser, log)

	evaluator := newEvaluator(cfg.Alerts, m, log)
	bridge := mqttbridge.New(mqttbridge.Options{
		BrokerURL:            cfg.MQTT.BrokerURL,
		Username:             cfg.MQTT.Username,
		Password:             cfg.MQTT.Password,
		ClientID:             cfg.MQTT.ClientID,
		QoS:                  cfg.MQTT.QoS,
		HistoryTopic:         cfg.MQTT.HistoryTopic,
		RealtimeTopic:        cfg.MQTT.RealtimeTopic,
		ControlTopic:         cfg.MQTT.ControlTopic,
		ConnectRetryInterval: cfg.MQTT.ConnectRetryInterval,
		MaxReconnectInterval: cfg.MQTT.MaxReconnectInterval,
	}, services.History, evaluator, m, log)
	gateway := live.NewGateway(bridge, cfg.Live.StopDebounce, m, log)
	bridge.OnRealtime(func(payload []byte) { gateway.Broadcast(payload) })

	apiHandler := handlers.NewHandler(services, gateway, handlers.Options{
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
		TokenTTL:     cfg.Auth.TokenTTL,
		SendBuffer:   cfg.Live.SendBuffer,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge.Connect(ctx)
	go services.Retention.Run(ctx, cfg.Retention.Interval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	gateway.Close()
	evaluator.Wait()
	bridge.Close()
}

// openDB initializes the SQLite database at path.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "monitoreo.db")
		path = "monitoreo.db"
	}
	return db.InitDB(path)
}

func ensureSuperUser(services *service.Service, su config.SuperUser, log *logger.Logger) {
	created, err := services.EnsureSuperUser(su.Username, su.Password)
	if err != nil {
		log.Errorw("super_user_bootstrap_failed", "username", su.Username, "err", err)
		return
	}
	if created {
		log.Infow("super_user_created", "username", su.Username)
	}
}

// newEvaluator loads the alert rules; a missing or broken file disables alerts.
func newEvaluator(cfg config.AlertsConfig, m *metrics.Metrics, log *logger.Logger) *alerts.Evaluator {
	rules := alerts.LoadOrDisabled(cfg.ConfigPath, log)

	var notifier alerts.Notifier
	if rules.Enabled {
		// a nil *TelegramNotifier must not become a non-nil interface
		if tg := alerts.NewTelegramNotifier(rules.Telegram, "", cfg.DispatchTimeout, m, log); tg != nil {
			notifier = tg
		}
	}
	return alerts.NewEvaluator(rules, notifier, cfg.DispatchTimeout, m, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
	log.Infow("http_listening", "port", port)
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
