package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"pfeifer.dev/velfilter/cli"
	"pfeifer.dev/velfilter/filter"
	"pfeifer.dev/velfilter/messaging"
	"pfeifer.dev/velfilter/observer"
	"pfeifer.dev/velfilter/params"
	"pfeifer.dev/velfilter/plan"
	"pfeifer.dev/velfilter/settings"
)

const SETTINGS_LOAD_TRIES = 3

func main() {
	cli.Handle(runDaemon)
}

func runDaemon(ctx context.Context, store *params.Store) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings.Settings.LoadWithRetries(store, SETTINGS_LOAD_TRIES)
	s := settings.Settings

	order, err := plan.ParseOrder(s.PipelineOrder)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	f := filter.New(s.FilterConfig(), observer.Multi{observer.NewLog(nil), observer.NewMetrics(reg)})
	handler := plan.Handler{
		Run: func(ctx context.Context, sc plan.Scenario, order plan.Order) (plan.Result, error) {
			return plan.Run(ctx, f, sc, order)
		},
		Order:    order,
		Defaults: func(sc plan.Scenario) plan.Scenario { return sc.WithDefaults(s) },
	}

	sub, err := messaging.NewSubscriber[plan.Request](settings.VELOCITY_FILTER_IN, true)
	if err != nil {
		return err
	}
	defer sub.Close()
	pub, err := messaging.NewPublisher[plan.Response](settings.VELOCITY_FILTER_OUT)
	if err != nil {
		return err
	}
	defer pub.Close()

	if s.MetricsAddr != "" {
		go serveMetrics(ctx, s.MetricsAddr, reg)
	}

	slog.Info("velocity filter started", "order", order, "in", settings.VELOCITY_FILTER_IN, "out", settings.VELOCITY_FILTER_OUT)
	return NewDaemon(handler, &sub, &pub, settings.LOOP_DELAY, reg).Loop(ctx)
}
