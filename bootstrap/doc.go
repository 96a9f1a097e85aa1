// Package bootstrap orchestrates application lifecycle around a module
// registry.
//
// It provides typed configuration validation, a managed module.Manager,
// startup/shutdown hooks, signal handling, and the optional admin surface.
//
// # Quick Start
//
//	cfg := bootstrap.AppConfig{}
//	cfg.Name = "my-service"
//	cfg.Modules.Autoload = []string{"worker.Pool"}
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run applies statically provided registrations, loads the configured
// modules in order, starts the admin server when enabled, blocks until
// SIGINT/SIGTERM, and tears the manager down exactly once.
package bootstrap
