package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pomotimer/internal/session"
)

var (
	focusCompletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pomotimer",
		Subsystem: "focus",
		Name:      "sessions_completed_total",
		Help:      "Number of focus sessions that ran to completion.",
	})

	focusCompletedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pomotimer",
		Subsystem: "focus",
		Name:      "last_completed_timestamp_seconds",
		Help:      "Unix timestamp of the most recently completed focus session.",
	})

	sessionCountGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pomotimer",
		Subsystem: "focus",
		Name:      "session_count",
		Help:      "Focus sessions counted by the running controller, including skipped ones.",
	})

	breaksStartedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pomotimer",
		Subsystem: "break",
		Name:      "started_total",
		Help:      "Number of breaks started, labeled by length.",
	}, []string{"length"})

	breaksCompletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pomotimer",
		Subsystem: "break",
		Name:      "completed_total",
		Help:      "Number of breaks that ran to completion.",
	})

	breathingCyclesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pomotimer",
		Subsystem: "breathing",
		Name:      "cycles_total",
		Help:      "Completed breath cycles, labeled by pattern.",
	}, []string{"pattern"})

	breathingCompletedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pomotimer",
		Subsystem: "breathing",
		Name:      "exercises_completed_total",
		Help:      "Breathing exercises that reached their cycle target, labeled by pattern.",
	}, []string{"pattern"})
)

func init() {
	prometheus.MustRegister(
		focusCompletedCounter,
		focusCompletedGauge,
		sessionCountGauge,
		breaksStartedCounter,
		breaksCompletedCounter,
		breathingCyclesCounter,
		breathingCompletedCounter,
	)
}

// RecordEvent updates the metrics for a session event. It has the
// signature of a session.EventCallback.
func RecordEvent(event session.Event) {
	sessionCountGauge.Set(float64(event.Count))

	switch event.Type {
	case session.EventFocusCompleted:
		focusCompletedCounter.Inc()
		if !event.At.IsZero() {
			focusCompletedGauge.Set(float64(event.At.Unix()))
		}
	case session.EventBreakStarted:
		breaksStartedCounter.WithLabelValues("short").Inc()
	case session.EventLongBreakStarted:
		breaksStartedCounter.WithLabelValues("long").Inc()
	case session.EventBreakCompleted:
		breaksCompletedCounter.Inc()
	case session.EventBreathingCycle:
		breathingCyclesCounter.WithLabelValues(event.Pattern.String()).Inc()
	case session.EventBreathingCompleted:
		breathingCompletedCounter.WithLabelValues(event.Pattern.String()).Inc()
	}
}

// Serve exposes /metrics on addr until ctx is cancelled
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
