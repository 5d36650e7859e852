package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/pkmsig/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, func() error, error)

// StartConfig holds everything the start command needs.
type StartConfig struct {
	Home string
	// Bind is the address the ABCI socket server listens on.
	Bind string
	// MetricsAddr, if not empty, exposes prometheus metrics over HTTP.
	MetricsAddr string
	Debug       bool
}

// StartCmd initializes the application and serves it over the ABCI socket
// until the process receives SIGINT or SIGTERM.
func StartCmd(gen AppGenerator, logger log.Logger, conf StartConfig) error {
	// Generate the app in the proper dir
	app, closeApp, err := gen(conf.Home, logger, conf.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeApp(); err != nil {
			logger.Error("Cannot close application", "err", err)
		}
	}()

	logger.Info("Starting ABCI app", "bind", conf.Bind)
	svr, err := server.NewServer(conf.Bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot start server: %s", err)
	}

	var metrics *http.Server
	if conf.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics = &http.Server{Addr: conf.MetricsAddr, Handler: mux}
		go func() {
			logger.Info("Serving metrics", "addr", conf.MetricsAddr)
			if err := metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}

	// Wait for a termination signal.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("Shutting down", "signal", (<-sig).String())

	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(ctx); err != nil {
			logger.Error("Cannot stop metrics server", "err", err)
		}
	}
	return svr.Stop()
}
