// Package observability provides OpenTelemetry metrics integration for the
// module registry.
//
// Initialization:
//
//	cfg := observability.DefaultMeterConfig("my-service")
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
// Registry instrumentation:
//
//	rm, err := observability.Instrument(mgr, observability.Meter("my-service"))
//
// Instrument installs rm as the manager's observer, so every load and unload
// increments the corresponding counter, and a gauge reports the number of
// currently loaded modules.
package observability
