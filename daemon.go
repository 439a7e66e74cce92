package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pfeifer.dev/velfilter/observer"
	"pfeifer.dev/velfilter/plan"
	"pfeifer.dev/velfilter/utils"
)

type RequestReader interface {
	Read() (plan.Request, bool)
}

type ResponseWriter interface {
	Send(plan.Response) error
}

type daemonMetrics struct {
	requests  *prometheus.CounterVec
	fallbacks prometheus.Counter
	duration  prometheus.Histogram
}

func newDaemonMetrics(reg prometheus.Registerer) *daemonMetrics {
	factory := promauto.With(reg)
	return &daemonMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: observer.NAMESPACE,
			Name:      "requests_total",
			Help:      "Planning requests handled, by outcome.",
		}, []string{"outcome"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: observer.NAMESPACE,
			Name:      "fallbacks_total",
			Help:      "Responses that fell back to the unlimited profile.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: observer.NAMESPACE,
			Name:      "request_duration_seconds",
			Help:      "Time spent planning one request.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// Daemon answers planning requests read from In on Out, once per Delay.
type Daemon struct {
	Handler plan.Handler
	In      RequestReader
	Out     ResponseWriter
	Delay   time.Duration
	metrics *daemonMetrics
}

func NewDaemon(handler plan.Handler, in RequestReader, out ResponseWriter, delay time.Duration, reg prometheus.Registerer) *Daemon {
	return &Daemon{Handler: handler, In: in, Out: out, Delay: delay, metrics: newDaemonMetrics(reg)}
}

// Step handles the queued request, if any, and reports whether one was read.
func (d *Daemon) Step(ctx context.Context) bool {
	req, success := d.In.Read()
	if !success {
		return false
	}

	start := time.Now()
	res := d.Handler.Handle(ctx, req)
	d.metrics.duration.Observe(time.Since(start).Seconds())

	switch {
	case res.Error != "":
		d.metrics.requests.WithLabelValues("error").Inc()
		slog.Warn("could not plan request", "id", res.ID, "error", res.Error)
	case res.Result.Fallback:
		d.metrics.requests.WithLabelValues("fallback").Inc()
		d.metrics.fallbacks.Inc()
		slog.Debug("planned request with fallback", "id", res.ID, "reason", res.Result.FallbackReason)
	default:
		d.metrics.requests.WithLabelValues("ok").Inc()
		slog.Debug("planned request", "id", res.ID, "samples", len(res.Result.FinalVel))
	}

	utils.Loge(errors.Wrapf(d.Out.Send(res), "could not send response %s", res.ID))
	return true
}

func (d *Daemon) Loop(ctx context.Context) error {
	ticker := time.NewTicker(d.Delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Step(ctx)
		}
	}
}

func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	utils.Loge(errors.Wrap(server.Shutdown(shutdownCtx), "could not shut down metrics server"))
}
