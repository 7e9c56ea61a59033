//go:build linux

// anthy-ibus is the Japanese input method engine for IBus.
//
// IBus launches it with -ibus through the component file written by
// -install:
//
//	anthy-ibus -install     Write ~/.local/share/ibus/component/goanthy.xml and restart IBus
//	anthy-ibus -uninstall   Remove the component file
//	anthy-ibus -ibus        Serve engines on the IBus bus
//
// Preferences are read from the config file and reloaded when it changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goanthy/internal/config"
	"goanthy/internal/convert"
	"goanthy/internal/dict"
	"goanthy/internal/health"
	"goanthy/internal/ime"
	"goanthy/internal/logging"
	"goanthy/internal/metrics"
	"goanthy/internal/store"
)

const crashRetention = 30 * 24 * time.Hour

func main() {
	ibusFlag := flag.Bool("ibus", false, "Run as an IBus engine (set by the component file)")
	installFlag := flag.Bool("install", false, "Install the IBus component")
	uninstallFlag := flag.Bool("uninstall", false, "Uninstall the IBus component")
	configPath := flag.String("config", "", "Config file (default: search the config directory)")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	address := flag.String("address", "", "IBus bus address (default: IBUS_ADDRESS or the ibus command)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics and health checks on this address")
	flag.Parse()

	switch {
	case *installFlag:
		p := ime.NewPlatform(ime.DefaultPlatformConfig())
		if err := p.Install(); err != nil {
			fatalf("install: %v", err)
		}
		fmt.Println("Installed. Enable \"Anthy (Go)\" in the IBus preferences.")
		return
	case *uninstallFlag:
		p := ime.NewPlatform(ime.DefaultPlatformConfig())
		if err := p.Uninstall(); err != nil {
			fatalf("uninstall: %v", err)
		}
		fmt.Println("Uninstalled.")
		return
	case !*ibusFlag:
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *logLevel, *address, *metricsAddr); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "anthy-ibus: "+format+"\n", args...)
	os.Exit(1)
}

func run(path, level, address, metricsAddr string) error {
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, created, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnvOverrides()
	if level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer log.Close()
	logging.SetDefault(log)
	if created {
		log.Info("wrote default config", "path", path)
	}

	crash := logging.NewCrashHandler(logging.DefaultCrashDir(config.DataDir()), "anthy-ibus", log)
	if err := crash.Cleanup(crashRetention); err != nil {
		log.Warn("clean crash reports", "error", err)
	}

	lib, err := dict.LoadLibrary(cfg.Dict.Files, cfg.Dict.Personalities, log.Logger)
	if err != nil {
		return err
	}
	log.Info("dictionaries loaded", "personalities", lib.Names())

	checker := health.NewChecker()
	checker.RegisterFunc("crashes", false, health.CrashCheck(crash.Reports, time.Hour))

	var learner dict.Learner
	if cfg.Learning.Enabled {
		st, err := store.Open(cfg.Learning.Path)
		if err != nil {
			log.Warn("learning disabled", "path", cfg.Learning.Path, "error", err)
		} else {
			defer st.Close()
			learner = st
			checker.RegisterFunc("learning", false, health.PingCheck(st.Ping))
		}
	}

	shared, err := ime.NewShared(cfg, log.Logger)
	if err != nil {
		return err
	}

	loader := config.NewLoader(path)
	if _, err := loader.Load(); err != nil {
		log.Warn("config reload disabled", "error", err)
	} else {
		loader.OnChange(func(_ *config.Config, changes []config.Change) {
			if err := shared.Apply(changes); err != nil {
				log.Warn("apply config changes", "error", err)
			}
			if err := log.ApplyChanges(changes); err != nil {
				log.Warn("apply logging changes", "error", err)
			}
		})
		if err := loader.Watch(); err != nil {
			log.Warn("config watch disabled", "error", err)
		}
		go func() {
			for err := range loader.Errors() {
				log.Warn("config reload", "error", err)
			}
		}()
	}
	defer loader.Close()

	reg := metrics.NewRegistry(config.AppName)
	m := metrics.NewEngineMetrics(reg)
	if metricsAddr != "" {
		srv := serveHTTP(metricsAddr, reg, checker, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	svc, err := ime.NewService(ime.ServiceConfig{
		Address: address,
		Shared:  shared,
		NewBackend: func() convert.Backend {
			return lib.NewBackend(learner, log.Logger)
		},
		Logger:   log,
		Metrics:  m,
		Crash:    crash,
		Launcher: &ime.ExecLauncher{Commands: ime.DefaultHelpers(path), Log: log.Logger},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := svc.Start(ctx); err != nil {
		return err
	}
	checker.RegisterFunc("ibus", true, health.DoneCheck(svc.Done()))
	checker.SetReady(true)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case <-svc.Done():
		log.Warn("ibus connection closed")
	}
	return svc.Stop()
}

// serveHTTP serves /metrics and the health endpoints.
func serveHTTP(addr string, reg *metrics.Registry, checker *health.Checker, log *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.HTTPHandler())
	checker.Handler(mux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", "error", err)
		}
	}()
	log.Info("serving metrics and health", "addr", addr)
	return srv
}
