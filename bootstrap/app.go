package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/FelixKahle/leafs/admin"
	apperrors "github.com/FelixKahle/leafs/errors"
	"github.com/FelixKahle/leafs/logger"
	"github.com/FelixKahle/leafs/module"
	"github.com/FelixKahle/leafs/version"
)

// App represents an application built around a module registry, with uniform
// lifecycle management. The type parameter C is the config type, which must
// satisfy the Config interface. Any struct embedding config.ServiceConfig
// automatically satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnStart(func(ctx context.Context) error {
//	    return module.LoadType[*Worker](app.Manager)
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Manager *module.Manager
	Logger  *logger.Logger

	admin           *admin.Server
	gracefulTimeout time.Duration
	stopOnce        sync.Once
	stopErr         error

	onStart []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, and initializes the logger and
// module manager.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}

	// Apply options (may override logger, manager, timeout).
	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	// Manager: use custom if provided, otherwise create one using the
	// application logger.
	if o.manager != nil {
		app.Manager = o.manager
	} else {
		app.Manager = module.NewManager(module.WithLogger(app.Logger))
	}

	return app, nil
}

// Run executes the full application lifecycle for long-running services:
// apply providers → autoload modules → OnStart hooks → admin server →
// block on signal → OnStop hooks → manager teardown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Block until shutdown signal
	a.Logger.Info("Application ready — waiting for shutdown signal")
	a.WaitForSignal(ctx)

	// Graceful shutdown
	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run(), it does not block on shutdown signals — it runs the task
// function and gracefully shuts down when the task completes or the context
// is canceled (e.g., via SIGINT/SIGTERM).
//
// Use RunTask for CLI tools, batch jobs, and one-shot processes that need
// the same bootstrap infrastructure (config, logger, modules, hooks) but
// have a finite workflow instead of running forever.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Set up signal-based cancellation for the task
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal — canceling task", logger.Fields(
				"signal", sig.String(),
			))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	// Execute the task
	taskErr := task(taskCtx)

	// Graceful shutdown
	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// startup performs the common initialization sequence shared by Run and
// RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		"build", version.Short(),
	))

	// Phase 1: apply statically provided module registrations. A manager
	// that already had them applied (module.Default()) reports every one
	// as a duplicate; that is not a failure.
	if err := module.ApplyProviders(a.Manager); err != nil && !onlyAlreadyRegistered(err) {
		return fmt.Errorf("applying module providers: %w", err)
	}

	// Phase 2: autoload configured modules in listed order.
	if err := a.autoload(); err != nil {
		return fmt.Errorf("autoloading modules: %w", err)
	}

	// Run OnStart hooks
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	// Phase 3: start the admin surface when configured.
	if ac := a.adminConfig(); ac != nil && ac.Enabled {
		a.admin = admin.New(*ac, a.Manager, a.Logger)
		if err := a.admin.Start(ctx); err != nil {
			return err
		}
	}

	a.Logger.Info("Startup complete", logger.Fields(
		"registered", a.Manager.RegisteredCount(),
		"loaded", a.Manager.Count(),
	))
	return nil
}

// autoload loads the modules named in the config's modules section.
// A module already loaded by a startup hook is not an error.
func (a *App[C]) autoload() error {
	mc := a.modulesConfig()
	if mc == nil || len(mc.Autoload) == 0 {
		return nil
	}

	for _, name := range mc.Autoload {
		info, ok := a.Manager.InfoByName(name)
		if !ok {
			return apperrors.NotRegistered(name)
		}
		if err := a.Manager.Load(info); err != nil {
			if apperrors.IsCode(err, apperrors.ErrCodeAlreadyLoaded) {
				continue
			}
			return err
		}
	}
	return nil
}

// onlyAlreadyRegistered reports whether every joined registration failure
// is a duplicate.
func onlyAlreadyRegistered(err error) bool {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return apperrors.IsCode(err, apperrors.ErrCodeAlreadyRegistered)
	}
	for _, e := range joined.Unwrap() {
		if !apperrors.IsCode(e, apperrors.ErrCodeAlreadyRegistered) {
			return false
		}
	}
	return true
}

func (a *App[C]) modulesConfig() *ModulesConfig {
	if p, ok := any(a.Cfg).(modulesConfigProvider); ok {
		return p.GetModulesConfig()
	}
	return nil
}

func (a *App[C]) adminConfig() *admin.Config {
	if p, ok := any(a.Cfg).(adminConfigProvider); ok {
		return p.GetAdminConfig()
	}
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context
// cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal — graceful shutdown starting", logger.Fields(
			"signal", sig.String(),
		))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled — shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop gracefully shuts down the application within the graceful timeout.
// The sequence runs at most once; later calls return the first result.
func (a *App[C]) stop() error {
	a.stopOnce.Do(func() {
		a.Logger.Info("Shutting down application", logger.Fields(
			"timeout", a.gracefulTimeout.String(),
		))

		ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
		defer cancel()

		// Run OnStop hooks while modules are still loaded.
		if err := runHooks(ctx, a.onStop); err != nil {
			a.Logger.Error("OnStop hook error", logger.Fields(
				"error", err.Error(),
			))
			a.stopErr = err
		}

		// Stop the admin surface before tearing modules down.
		if a.admin != nil {
			if err := a.admin.Stop(ctx); err != nil {
				a.Logger.Error("Admin server stop error", logger.Fields(
					"error", err.Error(),
				))
				if a.stopErr == nil {
					a.stopErr = err
				}
			}
		}

		a.Manager.TearDown()

		a.Logger.Info("Application shutdown complete")
	})
	return a.stopErr
}
