// Package alerts checks persisted readings against per-equipment limits and
// dispatches notifications for out-of-range temperatures.
package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/metrics"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"
)

const defaultDispatchTimeout = 10 * time.Second

// Notifier delivers one alert to an external channel.
type Notifier interface {
	Notify(ctx context.Context, a models.Alert) error
}

// Evaluator owns the loaded alert config. CheckAndNotify never blocks on
// delivery: notifications run in the background, bounded by the dispatch timeout.
type Evaluator struct {
	cfg      Config
	notifier Notifier
	timeout  time.Duration
	metrics  *metrics.Metrics
	log      *logger.Logger

	wg sync.WaitGroup
}

func NewEvaluator(cfg Config, notifier Notifier, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) *Evaluator {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	return &Evaluator{
		cfg:      cfg,
		notifier: notifier,
		timeout:  timeout,
		metrics:  m,
		log:      logger.OrNop(log).Named("alerts"),
	}
}

// Evaluate reports the alert a reading raises, if any. Bounds are inclusive:
// only a temperature strictly outside [minTemp, maxTemp] alerts.
func (e *Evaluator) Evaluate(equipment string, temperature float64) (models.Alert, bool) {
	if !e.cfg.Enabled {
		return models.Alert{}, false
	}
	eq, ok := e.cfg.Equipment(equipment)
	if !ok || !eq.Enabled {
		return models.Alert{}, false
	}

	var kind models.AlertKind
	switch {
	case temperature < eq.MinTemp:
		kind = models.AlertTooLow
	case temperature > eq.MaxTemp:
		kind = models.AlertTooHigh
	default:
		return models.Alert{}, false
	}
	return models.Alert{
		Equipment:   equipment,
		Temperature: temperature,
		MinTemp:     eq.MinTemp,
		MaxTemp:     eq.MaxTemp,
		Kind:        kind,
	}, true
}

// CheckAndNotify evaluates one reading and dispatches at most one notification.
// Delivery errors are logged and swallowed.
func (e *Evaluator) CheckAndNotify(ctx context.Context, equipment string, temperature float64) {
	a, ok := e.Evaluate(equipment, temperature)
	if !ok {
		return
	}
	e.log.Infow("temperature_out_of_range",
		"equipment", a.Equipment, "temperature", a.Temperature,
		"min", a.MinTemp, "max", a.MaxTemp, "kind", a.Kind)
	if e.notifier == nil {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		// detached from the message context, which ends when the handler returns
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		if err := e.notifier.Notify(dctx, a); err != nil {
			e.metrics.AlertFailed()
			e.log.Errorw("alert_dispatch_failed", "equipment", a.Equipment, "kind", a.Kind, "error", err)
			return
		}
		e.metrics.AlertSent(a.Kind)
	}()
}

// Wait blocks until in-flight notifications finish.
func (e *Evaluator) Wait() {
	e.wg.Wait()
}
