package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FelixKahle/leafs/module"
)

// RegistryMetrics holds OpenTelemetry instruments describing module registry
// activity. It implements module.Observer so it can be attached to a
// module.Manager directly.
type RegistryMetrics struct {
	loadTotal   metric.Int64Counter
	unloadTotal metric.Int64Counter
}

// NewRegistryMetrics creates registry instruments on the given meter.
func NewRegistryMetrics(meter metric.Meter) (*RegistryMetrics, error) {
	loadTotal, err := meter.Int64Counter("leafs.module.loads",
		metric.WithDescription("Total number of module load operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating leafs.module.loads counter: %w", err)
	}

	unloadTotal, err := meter.Int64Counter("leafs.module.unloads",
		metric.WithDescription("Total number of module unload operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating leafs.module.unloads counter: %w", err)
	}

	return &RegistryMetrics{
		loadTotal:   loadTotal,
		unloadTotal: unloadTotal,
	}, nil
}

// ModuleLoaded implements module.Observer.
func (rm *RegistryMetrics) ModuleLoaded(info module.Info) {
	rm.loadTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("module", info.Name())),
	)
}

// ModuleUnloaded implements module.Observer.
func (rm *RegistryMetrics) ModuleUnloaded(info module.Info) {
	rm.unloadTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("module", info.Name())),
	)
}

// Instrument attaches registry metrics to the manager and registers an
// observable gauge tracking the number of currently loaded modules.
func Instrument(mgr *module.Manager, meter metric.Meter) (*RegistryMetrics, error) {
	rm, err := NewRegistryMetrics(meter)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge("leafs.modules.loaded",
		metric.WithDescription("Number of currently loaded modules"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(mgr.Count()))
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating leafs.modules.loaded gauge: %w", err)
	}

	mgr.SetObserver(rm)
	return rm, nil
}
