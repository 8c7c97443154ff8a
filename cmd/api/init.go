package main

import (
	"context"
	"errors"

	"calc-engine/internal/calculator"
	"calc-engine/internal/observability"
)

// initTelemetry starts the OTLP trace, log and metric pipelines and returns
// one shutdown func that flushes all of them.
func initTelemetry(ctx context.Context) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	for _, start := range []func(context.Context) (func(context.Context) error, error){
		observability.InitTracing,
		observability.InitLogging,
		observability.InitMetrics,
	} {
		fn, err := start(ctx)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, fn)
	}

	return shutdown, nil
}

// initMetrics registers the application-specific metric instruments and
// Prometheus collectors. Add new domain InitMetrics calls here as the
// project grows.
func initMetrics(store *calculator.Store) error {
	if err := calculator.InitMetrics(); err != nil {
		return err
	}
	return observability.RegisterCollector(store)
}
