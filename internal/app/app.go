package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"chat-capture/backend/internal/api"
	"chat-capture/backend/internal/auth"
	"chat-capture/backend/internal/batch"
	"chat-capture/backend/internal/config"
	"chat-capture/backend/internal/database"
	"chat-capture/backend/internal/gateway"
	"chat-capture/backend/internal/hostapp"
	"chat-capture/backend/internal/intercept"
	"chat-capture/backend/internal/remote"
	"chat-capture/backend/internal/repository"
	"chat-capture/backend/internal/service"
	"chat-capture/backend/internal/stream"
)

const shutdownTimeout = 15 * time.Second

// App holds the wired pipeline and the HTTP server that fronts the host.
type App struct {
	Config *config.Config
	// DB is set for the sqlite cache backend, Redis for the redis one.
	DB    *sql.DB
	Redis *redis.Client

	Server        *http.Server
	Store         *repository.Store
	Interceptor   *intercept.Interceptor
	Batches       *batch.Scheduler
	Conversations *service.ConversationHandler
	Messages      *service.MessageHandler
	Account       *service.AccountService
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	a, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		return 1
	}
	return 0
}

// NewApp wires every component but starts nothing.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	cache, err := a.openCache()
	if err != nil {
		return nil, err
	}
	a.Store = repository.NewStore(cache)

	gw := gateway.New(cfg.RemoteAPIURL, newTokenProvider(cfg),
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.RemoteTimeout}),
		gateway.WithReadPolicy(gateway.RetryPolicy{MaxRetries: 2, Delay: cfg.RetryDelay, Schedule: gateway.Linear}),
	)
	remoteClient := remote.NewClient(gw)
	host := hostapp.NewClient(cfg.HostURL, cfg.HostConversationPath)

	a.Batches = batch.New(remoteClient, batch.WithDebounce(cfg.BatchDebounce), batch.WithMaxSize(cfg.BatchMaxSize))
	a.Conversations = service.NewConversationHandler(host, remoteClient, a.Store, a.Batches)
	a.Messages, err = service.NewMessageHandler(a.Conversations, a.Batches, cfg.DedupCapacity)
	if err != nil {
		a.closeCache()
		return nil, err
	}
	a.Conversations.SetMessageSink(a.Messages)
	a.Account = service.NewAccountService(remoteClient, service.StatsPolicy(), cfg.StatsRefreshInterval, nil)

	a.Interceptor = intercept.New()
	routes := service.Routes{
		StreamPath:        cfg.HostStreamPath,
		ConversationPath:  cfg.HostConversationPath,
		ConversationsPath: cfg.HostConversationsPath,
	}
	service.NewCaptureService(routes, stream.NewProcessor(), a.Conversations, a.Messages, host).Register(a.Interceptor)

	proxy, err := newHostProxy(cfg.HostURL, a.Interceptor, cfg.InterceptMode)
	if err != nil {
		a.closeCache()
		return nil, err
	}

	router := api.NewRouter(
		api.NewCaptureHandler(a.Conversations, a.Messages, a.Batches),
		api.NewAccountHandler(a.Account),
	)
	mux := http.NewServeMux()
	mux.Handle(api.ControlPrefix+"/", router)
	mux.Handle("/", proxy)

	a.Server = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streamed completions
		IdleTimeout:       120 * time.Second,
	}
	return a, nil
}

func (a *App) openCache() (repository.Cache, error) {
	switch strings.ToLower(a.Config.CacheBackend) {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("could not connect to redis at %s: %w", a.Config.RedisAddr, err)
		}
		a.Redis = rdb
		slog.Info("Successfully connected to Redis.", "addr", a.Config.RedisAddr)
		return repository.NewRedisCache(rdb), nil
	default:
		db, err := database.InitDB(a.Config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		slog.Info("Successfully connected to SQLite database.", "path", a.Config.DatabasePath)
		return repository.NewSQLiteCache(db), nil
	}
}

func (a *App) closeCache() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}
}

func newTokenProvider(cfg *config.Config) auth.TokenProvider {
	if cfg.AuthTokenURL != "" {
		return auth.NewHTTPTokenProvider(cfg.AuthTokenURL)
	}
	return auth.StaticTokenProvider{Token: cfg.AuthToken}
}

// newHostProxy forwards everything outside the control API to the host.
// Accept-Encoding is dropped on the way out so the transport negotiates
// and decodes compression itself and observers see plain bodies.
func newHostProxy(hostURL string, i *intercept.Interceptor, mode string) (http.Handler, error) {
	target, err := url.Parse(hostURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid host url %q", hostURL)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.Host = target.Host
			r.Out.Header.Del("Accept-Encoding")
		},
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Warn("Host request failed", "component", "proxy", "url", r.URL.String(), "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	switch strings.ToLower(mode) {
	case "middleware":
		return i.Middleware(proxy), nil
	default:
		proxy.Transport = i.Transport(http.DefaultTransport)
		return proxy, nil
	}
}

// Run serves until ctx is cancelled, then shuts down and drains the queue.
func (a *App) Run(ctx context.Context) error {
	a.Initialize(ctx)
	go a.Account.RunStatsRefresher(ctx, a.Config.StatsRefreshInterval)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", a.Server.Addr, "host", a.Config.HostURL)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Server shutdown did not complete", "error", err)
	}
	a.Cleanup(shutdownCtx)
	return runErr
}

// Initialize restores state from the durable cache: the known chat list
// and any batch left undelivered by the previous run. Cache failures are
// logged and capture continues without the restored state.
func (a *App) Initialize(ctx context.Context) {
	if err := a.Conversations.Initialize(ctx); err != nil {
		slog.Warn("Starting without known chats", "error", err)
	}

	pending, err := a.Store.LoadPending(ctx)
	if err != nil {
		slog.Warn("Could not load pending batch", "error", err)
		return
	}
	if pending == nil || pending.Empty() {
		return
	}
	a.Batches.Restore(*pending)
	if err := a.Store.ClearPending(ctx); err != nil {
		slog.Warn("Could not clear pending batch", "error", err)
	}
	slog.Info("Restored pending batch", "chats", len(pending.Chats), "messages", len(pending.Messages))
}

// Cleanup waits for in-flight capture work and delivers whatever is
// queued. What could not be delivered is written to the durable cache for
// the next run. Connections are closed last.
func (a *App) Cleanup(ctx context.Context) {
	if err := a.Interceptor.Wait(ctx); err != nil {
		slog.Warn("Capture callbacks still running at shutdown", "error", err)
	}
	a.Conversations.Wait()
	a.Batches.Stop()

	if err := a.Batches.ForceFlush(ctx); err != nil {
		slog.Warn("Final delivery failed, saving pending batch", "error", err)
	}
	// Anything left, including items queued by late callbacks, goes to the cache.
	if pending := a.Batches.Snapshot(); !pending.Empty() {
		slog.Info("Saving pending batch", "chats", len(pending.Chats), "messages", len(pending.Messages))
		if err := a.Store.SavePending(context.WithoutCancel(ctx), pending); err != nil {
			slog.Error("Could not save pending batch, items are lost", "error", err)
		}
	}

	a.closeCache()
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
