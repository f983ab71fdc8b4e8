// Command authd serves the authentication API over HTTP, backed by Redis.
//
// Configuration comes from flags and environment variables; the JWT signing
// secrets must be provided via AUTHD_ACCESS_SECRET and AUTHD_REFRESH_SECRET.
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

	"github.com/redis/go-redis/v9"

	authkit "github.com/smartmailhq/authkit"
	"github.com/smartmailhq/authkit/httpapi"
)

func main() {
	var (
		listenAddr = flag.String("listen", ":8080", "HTTP listen address")
		redisAddr  = flag.String("redis-addr", "", "redis address; REDIS_ADDR env is used if empty")
		prefix     = flag.String("prefix", "ak", "redis key prefix")
		auditLog   = flag.Bool("audit-log", true, "write audit events as JSON lines to stderr")
	)
	flag.Parse()

	if err := run(*listenAddr, *redisAddr, *prefix, *auditLog); err != nil {
		fmt.Fprintf(os.Stderr, "authd: %v\n", err)
		os.Exit(1)
	}
}

func run(listenAddr, redisAddr, prefix string, auditLog bool) error {
	accessSecret := os.Getenv("AUTHD_ACCESS_SECRET")
	refreshSecret := os.Getenv("AUTHD_REFRESH_SECRET")
	if accessSecret == "" || refreshSecret == "" {
		return errors.New("AUTHD_ACCESS_SECRET and AUTHD_REFRESH_SECRET must be set")
	}

	if redisAddr == "" {
		redisAddr = os.Getenv("REDIS_ADDR")
	}
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{redisAddr},
	})
	defer func() { _ = client.Close() }()

	cfg := authkit.DefaultConfig()
	cfg.Token.AccessSecret = []byte(accessSecret)
	cfg.Token.RefreshSecret = []byte(refreshSecret)
	cfg.Session.RedisPrefix = prefix
	cfg.Metrics.Enabled = true

	builder := authkit.New().WithConfig(cfg).WithRedis(client)
	if auditLog {
		builder = builder.WithAuditSink(authkit.NewJSONWriterSink(os.Stderr))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           httpapi.NewRouter(engine),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("authd listening on %s (redis %s)\n", listenAddr, redisAddr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
