package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// HostURL is the third-party web application the proxy fronts.
	HostURL string `mapstructure:"HOST_URL"`
	// HostStreamPath, HostConversationPath and HostConversationsPath are
	// the host endpoints we decode. Matching is by path prefix.
	HostStreamPath        string `mapstructure:"HOST_STREAM_PATH"`
	HostConversationPath  string `mapstructure:"HOST_CONVERSATION_PATH"`
	HostConversationsPath string `mapstructure:"HOST_CONVERSATIONS_PATH"`
	// InterceptMode picks where exchanges are observed: "transport" wraps
	// the proxy's outbound client, "middleware" wraps the inbound handler.
	InterceptMode string `mapstructure:"INTERCEPT_MODE"`

	RemoteAPIURL  string        `mapstructure:"REMOTE_API_URL"`
	RemoteTimeout time.Duration `mapstructure:"REMOTE_TIMEOUT"`
	RetryDelay    time.Duration `mapstructure:"RETRY_DELAY"`

	AuthToken    string `mapstructure:"AUTH_TOKEN"`
	AuthTokenURL string `mapstructure:"AUTH_TOKEN_URL"`

	CacheBackend string `mapstructure:"CACHE_BACKEND"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`

	BatchDebounce time.Duration `mapstructure:"BATCH_DEBOUNCE"`
	BatchMaxSize  int           `mapstructure:"BATCH_MAX_SIZE"`
	DedupCapacity int           `mapstructure:"DEDUP_CAPACITY"`

	StatsRefreshInterval time.Duration `mapstructure:"STATS_REFRESH_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("LISTEN_ADDR", ":8000")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("HOST_URL", "https://chatgpt.com")
	viper.SetDefault("HOST_STREAM_PATH", "/backend-api/conversation")
	viper.SetDefault("HOST_CONVERSATION_PATH", "/backend-api/conversation/")
	viper.SetDefault("HOST_CONVERSATIONS_PATH", "/backend-api/conversations")
	viper.SetDefault("INTERCEPT_MODE", "transport")
	viper.SetDefault("REMOTE_API_URL", "http://localhost:8080/api")
	viper.SetDefault("REMOTE_TIMEOUT", "30s")
	viper.SetDefault("RETRY_DELAY", "1s")
	viper.SetDefault("AUTH_TOKEN", "")
	viper.SetDefault("AUTH_TOKEN_URL", "")
	viper.SetDefault("CACHE_BACKEND", "sqlite")
	viper.SetDefault("DATABASE_PATH", "/data/capture.db")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("BATCH_DEBOUNCE", "2s")
	viper.SetDefault("BATCH_MAX_SIZE", 5)
	viper.SetDefault("DEDUP_CAPACITY", 100000)
	viper.SetDefault("STATS_REFRESH_INTERVAL", "5m")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
