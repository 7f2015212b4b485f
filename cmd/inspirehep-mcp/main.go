// Command inspirehep-mcp serves the InspireHEP literature tools over the
// Model Context Protocol, on stdio or HTTP.
//
// Configuration comes from INSPIREHEP_* environment variables; see package
// config. The -transport and -addr flags override the environment.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jonwraymond/inspirehep-mcp/config"
	"github.com/jonwraymond/inspirehep-mcp/health"
	"github.com/jonwraymond/inspirehep-mcp/inspire"
	"github.com/jonwraymond/inspirehep-mcp/observe"
	"github.com/jonwraymond/inspirehep-mcp/observe/exporters"
	"github.com/jonwraymond/inspirehep-mcp/server"
	"github.com/jonwraymond/inspirehep-mcp/tools"
)

var version = "0.1.0"

const instructions = "MCP server for searching and retrieving high-energy physics literature from InspireHEP"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "inspirehep-mcp:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("inspirehep-mcp", flag.ContinueOnError)
	transport := fs.String("transport", "", "stdio or http (default from INSPIREHEP_TRANSPORT, else stdio)")
	addr := fs.String("addr", "", "HTTP listen address (default from INSPIREHEP_ADDR, else :8080)")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Println(version)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, nil)
	if err != nil {
		return err
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig(version, exporters.Options{Registerer: promReg}))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	logger := obs.Logger()

	rec, err := observe.NewRequestRecorder(obs)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	client, err := inspire.New(cfg.InspireConfig(logger, rec))
	if err != nil {
		return err
	}

	mw, err := observe.MiddlewareFromObserver(obs, observe.WithErrorClassifier(tools.ErrorKind))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	reg := tools.NewRegistry(tools.WithMiddleware(mw), tools.WithLogger(logger))
	if err := tools.Register(reg, client, logger); err != nil {
		return err
	}

	authz, err := cfg.Authorizer()
	if err != nil {
		return err
	}
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithVersion(version),
		server.WithInstructions(instructions),
	}
	if authz != nil {
		opts = append(opts, server.WithAuthorizer(authz))
	}
	srv := server.New(reg, opts...)

	logger.Info(ctx, "starting",
		observe.Field{Key: "transport", Value: cfg.Transport},
		observe.Field{Key: "base_url", Value: client.BaseURL()},
		observe.Field{Key: "version", Value: version},
	)

	var serveErr error
	switch cfg.Transport {
	case config.TransportHTTP:
		serveErr = serveHTTP(ctx, cfg, srv, client, promReg, logger)
	default:
		serveErr = srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = errors.Join(serveErr, client.Close(), obs.Shutdown(shutdownCtx))
	logger.Info(shutdownCtx, "stopped")
	return err
}

func serveHTTP(ctx context.Context, cfg config.Config, srv *server.Server, client *inspire.Client, gatherer prometheus.Gatherer, logger observe.Logger) error {
	agg := health.NewAggregator()
	agg.Register(health.NewUpstreamChecker(health.UpstreamCheckerConfig{
		URL:       client.BaseURL(),
		UserAgent: client.Config().UserAgent,
	}))
	agg.Register(health.NewCacheChecker(client, 0))
	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))

	ingress := cfg.IngressExecutor()
	if ingress != nil && ingress.Bulkhead() != nil {
		agg.Register(health.NewIngressChecker(ingress.Bulkhead()))
	}

	authn := cfg.Authenticator(nil)
	if authn == nil {
		logger.Warn(ctx, "http transport has no authentication configured")
	}

	httpSrv := &http.Server{
		Addr: cfg.Addr,
		Handler: srv.HTTPHandler(server.HTTPConfig{
			Authenticator: authn,
			Ingress:       ingress,
			Health:        agg,
			HealthOptions: health.HandlerOptions{Service: config.ServiceName, Version: version},
			Gatherer:      gatherer,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", observe.Field{Key: "addr", Value: cfg.Addr})
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
