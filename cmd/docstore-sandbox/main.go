package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ratio1/docstore_sdk_go/internal/devseed"
	"github.com/Ratio1/docstore_sdk_go/internal/logging"
	"github.com/Ratio1/docstore_sdk_go/pkg/docstore/mock"
)

type failConfig struct {
	rate float64
	code int
}

type sandboxFlags struct {
	addr      string
	seed      string
	token     string
	latency   time.Duration
	fail      string
	logLevel  string
	logFormat string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newSandboxCommand(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newSandboxCommand(fs afero.Fs) *cobra.Command {
	f := &sandboxFlags{}
	cmd := &cobra.Command{
		Use:           "docstore-sandbox",
		Short:         "Serve an in-memory document store over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), fs, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", ":8787", "listen address")
	flags.StringVar(&f.seed, "seed", "", "path to a JSON or YAML document loaded at startup")
	flags.StringVar(&f.token, "token", "", "reject requests whose auth parameter differs from this token")
	flags.DurationVar(&f.latency, "latency", 0, "artificial latency to inject per request")
	flags.StringVar(&f.fail, "fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	flags.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "console", "log format: console or json")
	return cmd
}

func serve(ctx context.Context, fs afero.Fs, f *sandboxFlags, stdout, stderr io.Writer) error {
	logger, err := logging.New(f.logLevel, f.logFormat, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	failCfg, err := parseFailConfig(f.fail)
	if err != nil {
		return fmt.Errorf("parse fail flag: %w", err)
	}

	store := mock.New(mock.WithToken(f.token))
	if f.seed != "" {
		doc, err := devseed.Load(fs, f.seed)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		if err := store.Seed(doc); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
	}

	server := &http.Server{
		Addr:              f.addr,
		Handler:           withMiddleware(logger, f.latency, failCfg, store.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	host := f.addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	logger.Info("docstore-sandbox listening", zap.String("addr", f.addr))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "export DOCSTORE_RUNTIME_MODE=http")
	fmt.Fprintf(stdout, "export DOCSTORE_URL=http://%s\n", host)
	if f.token != "" {
		fmt.Fprintf(stdout, "export DOCSTORE_TOKEN=%s\n", f.token)
	}
	fmt.Fprintln(stdout)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func withMiddleware(logger *zap.Logger, delay time.Duration, failCfg failConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("exec request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
			status := failCfg.code
			if status == 0 {
				status = http.StatusInternalServerError
			}
			logger.Info("failure injected", zap.String("path", r.URL.Path), zap.Int("status", status))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":"failure injected"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "rate":
			rate, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return failConfig{}, err
			}
			if rate < 0 || rate > 1 {
				return failConfig{}, fmt.Errorf("rate %v outside [0,1]", rate)
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(val)
			if err != nil {
				return failConfig{}, err
			}
			if code < 400 || code > 599 {
				return failConfig{}, fmt.Errorf("code %d is not an error status", code)
			}
			cfg.code = code
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", key)
		}
	}
	return cfg, nil
}
