package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/joho/godotenv"

	"cura-service/handlers"
	"cura-service/internal/cart"
	"cura-service/internal/catalog"
	"cura-service/internal/consul"
	"cura-service/internal/orders"
	"cura-service/internal/stores/localdisk"
	"cura-service/internal/upstream"
	"cura-service/internal/users"
	"cura-service/pkg/logkey"
)

func main() {
	if err := startApp(); err != nil {
		slog.Error("service stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	// .env is optional; deployed environments set real env vars.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, relying on environment")
	}

	disk, err := openDataDir()
	if err != nil {
		return err
	}

	cartStore, err := cart.NewStore(disk)
	if err != nil {
		return fmt.Errorf("failed to init cart store: %w", err)
	}
	cartStore.Subscribe(func() {
		slog.Debug("cart updated", slog.Int("TotalItems", cartStore.TotalItemCount()))
	})

	baseURL, err := resolveUpstream()
	if err != nil {
		return err
	}
	slog.Info("using medicine api", slog.String("BaseURL", baseURL))

	// The users conf supplies the bearer token for every upstream
	// call, including its own; the indirection breaks the cycle.
	var userConf *users.Conf
	api, err := upstream.NewClient(baseURL, func() string {
		if userConf == nil {
			return ""
		}
		return userConf.Token()
	})
	if err != nil {
		return fmt.Errorf("failed to init upstream client: %w", err)
	}

	userConf, err = users.NewConf(api, disk)
	if err != nil {
		return fmt.Errorf("failed to init users conf: %w", err)
	}
	catalogConf, err := catalog.NewConf(api)
	if err != nil {
		return fmt.Errorf("failed to init catalog conf: %w", err)
	}
	orderConf, err := orders.NewConf(api)
	if err != nil {
		return fmt.Errorf("failed to init orders conf: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reconcile with other instances sharing the data directory.
	go func() {
		if err := cartStore.Watch(ctx, disk.Path(cart.StorageKey)); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("cart watcher stopped", slog.String(logkey.ERROR, err.Error()))
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handlers.API("/api/v1", cartStore, catalogConf, orderConf, userConf),
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("storefront listening", slog.String("Addr", srv.Addr))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// openDataDir prepares the local storage directory standing in for the
// browser's localStorage.
func openDataDir() (*localdisk.Store, error) {
	dir := os.Getenv("CURA_DATA_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		dir = filepath.Join(home, ".cura")
	}
	disk, err := localdisk.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	return disk, nil
}

// resolveUpstream finds the medicine API: a pinned MEDICINE_API_URL
// wins, otherwise the service is discovered through Consul.
func resolveUpstream() (string, error) {
	if baseURL := os.Getenv("MEDICINE_API_URL"); baseURL != "" {
		return baseURL, nil
	}
	if os.Getenv("CONSUL_HTTP_ADDR") == "" {
		return "", fmt.Errorf("MEDICINE_API_URL or CONSUL_HTTP_ADDR must be set")
	}

	client, err := consulapi.NewClient(consulapi.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to create consul client: %w", err)
	}
	serviceName := os.Getenv("MEDICINE_API_SERVICE")
	if serviceName == "" {
		serviceName = "medicine-api"
	}
	address, servicePort, err := consul.GetServiceAddress(client, serviceName)
	if err != nil {
		return "", fmt.Errorf("failed to discover medicine api: %w", err)
	}
	return fmt.Sprintf("http://%s:%d", address, servicePort), nil
}
