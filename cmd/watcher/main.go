// Package main provides the watcher service that runs the full signal
// flow: gateway messages in, contract-address detection, safety
// validation, and buy-order forwarding out, with the signal history
// recorded per subscriber.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"chainwatch/internal/dbotx"
	"chainwatch/internal/dexscreener"
	"chainwatch/internal/feed"
	"chainwatch/internal/monitor"
	"chainwatch/internal/observability"
	"chainwatch/internal/storage"
	chstore "chainwatch/internal/storage/clickhouse"
	"chainwatch/internal/storage/memory"
	"chainwatch/internal/storage/migrations"
	pgstore "chainwatch/internal/storage/postgres"
)

// Server holds all components of the watcher service.
type Server struct {
	// Configuration
	gatewayEndpoint string
	gatewayAPI      string
	resyncInterval  time.Duration

	// Stores
	stores *allStores

	// Components
	lookup *dexscreener.Client
	trade  *dbotx.Client
	logger *log.Logger

	// State
	mu         sync.Mutex
	started    time.Time
	subscribed map[int64]struct{}
}

// allStores holds all storage implementations.
type allStores struct {
	userStore    storage.UserStore
	channelStore storage.ChannelStore
	orderStore   storage.OrderStore
	signalStore  storage.SignalStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	gatewayEndpoint := flag.String("gateway-endpoint", os.Getenv("GATEWAY_WS_ENDPOINT"), "Message gateway WebSocket endpoint")
	gatewayAPI := flag.String("gateway-api", os.Getenv("GATEWAY_API_ENDPOINT"), "Message gateway HTTP API endpoint (admin lookups)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	dbotxBaseURL := flag.String("dbotx-base-url", os.Getenv("DBOTX_BASE_URL"), "DBOTX API base URL (default production)")
	dexscreenerBaseURL := flag.String("dexscreener-base-url", os.Getenv("DEXSCREENER_BASE_URL"), "DexScreener API base URL (default production)")
	resyncInterval := flag.Duration("resync-interval", 1*time.Minute, "Channel subscription resync interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[watcher] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *gatewayEndpoint == "" {
		logger.Fatal("--gateway-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create API clients
	var lookupOpts []dexscreener.ClientOption
	if *dexscreenerBaseURL != "" {
		lookupOpts = append(lookupOpts, dexscreener.WithBaseURL(*dexscreenerBaseURL))
	}
	var tradeOpts []dbotx.ClientOption
	if *dbotxBaseURL != "" {
		tradeOpts = append(tradeOpts, dbotx.WithBaseURL(*dbotxBaseURL))
	}

	// Create server
	server := &Server{
		gatewayEndpoint: *gatewayEndpoint,
		gatewayAPI:      *gatewayAPI,
		resyncInterval:  *resyncInterval,
		stores:          stores,
		lookup:          dexscreener.NewClient(lookupOpts...),
		trade:           dbotx.NewClient(tradeOpts...),
		logger:          logger,
		subscribed:      make(map[int64]struct{}),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	// Run the watcher
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Watcher error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			userStore:    memory.NewUserStore(),
			channelStore: memory.NewChannelStore(),
			orderStore:   memory.NewOrderStore(),
			signalStore:  memory.NewSignalStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := chstore.EnsureDatabase(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		userStore:    pgstore.NewUserStore(pool),
		channelStore: pgstore.NewChannelStore(pool),
		orderStore:   pgstore.NewOrderStore(pool),
		signalStore:  chstore.NewSignalStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run connects to the gateway, subscribes the active channel set, and
// consumes the message stream until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting watcher...")

	client, err := feed.NewClient(ctx, s.gatewayEndpoint, nil)
	if err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	defer client.Close()

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	if err := s.syncSubscriptions(ctx, client); err != nil {
		return fmt.Errorf("initial channel subscribe: %w", err)
	}

	// Admin cache only when the gateway HTTP API is configured; without
	// it, admins-only subscriptions rely on the stream's admin flag.
	var admins *monitor.AdminCache
	if s.gatewayAPI != "" {
		admins = monitor.NewAdminCache(feed.NewAdminClient(s.gatewayAPI, nil), monitor.DefaultAdminTTL)
	}

	pipeline := monitor.New(monitor.Options{
		Users:    s.stores.userStore,
		Channels: s.stores.channelStore,
		Orders:   s.stores.orderStore,
		Signals:  s.stores.signalStore,
		Lookup:   s.lookup,
		Trade: func(apiKey string) monitor.TradeAPI {
			return s.trade.ForKey(apiKey)
		},
		Admins: admins,
	})

	// Pick up subscription changes made while running
	go s.runResyncLoop(ctx, client)

	s.logger.Println("Watcher started")
	return pipeline.Run(ctx, client.Messages())
}

// runResyncLoop periodically reconciles the gateway subscription set
// with the active subscriptions in storage.
func (s *Server) runResyncLoop(ctx context.Context, client *feed.Client) {
	ticker := time.NewTicker(s.resyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.syncSubscriptions(ctx, client); err != nil {
				s.logger.Printf("Channel resync error: %v", err)
			}
		}
	}
}

// syncSubscriptions subscribes newly active channels and unsubscribes
// channels no longer watched by anyone.
func (s *Server) syncSubscriptions(ctx context.Context, client *feed.Client) error {
	ids, err := s.stores.channelStore.GetActiveChannels(ctx)
	if err != nil {
		return fmt.Errorf("load active channels: %w", err)
	}

	desired := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		desired[id] = struct{}{}
	}

	s.mu.Lock()
	var toAdd, toRemove []int64
	for id := range desired {
		if _, ok := s.subscribed[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for id := range s.subscribed {
		if _, ok := desired[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	s.mu.Unlock()

	if len(toAdd) > 0 {
		if err := client.Subscribe(ctx, toAdd...); err != nil {
			return fmt.Errorf("subscribe %v: %w", toAdd, err)
		}
		s.logger.Printf("Subscribed channels: %v", toAdd)
	}
	if len(toRemove) > 0 {
		if err := client.Unsubscribe(ctx, toRemove...); err != nil {
			return fmt.Errorf("unsubscribe %v: %w", toRemove, err)
		}
		s.logger.Printf("Unsubscribed channels: %v", toRemove)
	}

	s.mu.Lock()
	s.subscribed = desired
	s.mu.Unlock()
	return nil
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status             string    `json:"status"`
	Uptime             string    `json:"uptime"`
	Started            time.Time `json:"started"`
	SubscribedChannels int       `json:"subscribed_channels"`
}

// handleStatus returns watcher status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:             "running",
		Uptime:             time.Since(s.started).String(),
		Started:            s.started,
		SubscribedChannels: len(s.subscribed),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
