package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"middleware-users/assembly"
)

const (
	statsNone   = "none"
	statsMemory = "memory"
	statsRedis  = "redis"
)

type config struct {
	listenAddr string

	rateEnabled      bool
	rateAlgorithm    string
	rateWindow       time.Duration
	rateMaxRequests  int
	rateKeyHeader    string
	rateCleanupEvery time.Duration
	retryAfter       time.Duration
	addHeaders       bool

	authHeader string
	usersFile  string

	concurrencyMax     int
	concurrencyTimeout time.Duration

	rateStatsBackend       string
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsBucket        string
	rateStatsTrackKeys     bool

	logLevel  string
	logFormat string
}

// source resolve uma chave: variável de ambiente primeiro, depois o arquivo YAML.
type source struct {
	file map[string]string
}

func (s source) lookup(k string) (string, bool) {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v, true
	}
	v, ok := s.file[k]
	return v, ok && v != ""
}

// loadFile lê o YAML opcional. As chaves são os mesmos nomes das variáveis de ambiente.
func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}
	return values, nil
}

// loadDotEnv carrega .env se existir. Variáveis já definidas não são sobrescritas.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}
	return nil
}

func readConfig() (config, error) {
	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return config{}, err
	}
	src := source{file: file}

	cfg := config{}
	cfg.listenAddr = src.getenvDefault("LISTEN_ADDR", ":"+src.getenvDefault("PORT", "3000"))
	cfg.rateEnabled = src.getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateAlgorithm = strings.ToLower(src.getenvDefault("RATE_ALGORITHM", assembly.AlgorithmFixed))
	cfg.rateWindow = src.getenvDurationDefault("RATE_WINDOW", time.Minute)
	cfg.rateMaxRequests = src.getenvIntDefault("RATE_MAX_REQUESTS", 5)
	cfg.rateKeyHeader = src.getenvDefault("RATE_KEY_HEADER", "X-User-Id")
	cfg.rateCleanupEvery = src.getenvDurationDefault("RATE_CLEANUP_EVERY", time.Minute)
	cfg.retryAfter = src.getenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = src.getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.authHeader = src.getenvDefault("AUTH_HEADER", "Authorization")
	cfg.usersFile = src.getenvDefault("USERS_FILE", "data/users.json")
	cfg.concurrencyMax = src.getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = src.getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.rateStatsBackend = strings.ToLower(src.getenvDefault("RATE_STATS_BACKEND", statsNone))
	cfg.rateStatsRedisAddr = src.getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.rateStatsRedisPassword = src.getenvDefault("RATE_STATS_REDIS_PASSWORD", "")
	cfg.rateStatsRedisDB = src.getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.rateStatsPrefix = src.getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.rateStatsTTL = src.getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = src.getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = src.getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	cfg.logLevel = src.getenvDefault("LOG_LEVEL", "info")
	cfg.logFormat = strings.ToLower(src.getenvDefault("LOG_FORMAT", "json"))

	switch cfg.rateAlgorithm {
	case assembly.AlgorithmFixed, assembly.AlgorithmToken:
	default:
		return config{}, errors.Errorf("RATE_ALGORITHM must be %q or %q", assembly.AlgorithmFixed, assembly.AlgorithmToken)
	}
	if cfg.rateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.rateMaxRequests <= 0 {
		return config{}, errors.New("RATE_MAX_REQUESTS must be > 0")
	}
	if strings.TrimSpace(cfg.rateKeyHeader) == "" {
		return config{}, errors.New("RATE_KEY_HEADER must not be empty")
	}
	if strings.TrimSpace(cfg.usersFile) == "" {
		return config{}, errors.New("USERS_FILE must not be empty")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	switch cfg.rateStatsBackend {
	case statsNone, statsMemory:
	case statsRedis:
		if strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
			return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_BACKEND=redis")
		}
	default:
		return config{}, errors.Errorf("unknown RATE_STATS_BACKEND %q", cfg.rateStatsBackend)
	}
	switch cfg.logFormat {
	case "json", "console":
	default:
		return config{}, errors.Errorf("LOG_FORMAT must be json or console, got %q", cfg.logFormat)
	}
	return cfg, nil
}

func (c config) assemblyOptions() assembly.Options {
	return assembly.Options{
		Rate: assembly.RateOptions{
			Enabled:      c.rateEnabled,
			Algorithm:    c.rateAlgorithm,
			Window:       c.rateWindow,
			MaxRequests:  c.rateMaxRequests,
			KeyHeader:    c.rateKeyHeader,
			CleanupEvery: c.rateCleanupEvery,
			RetryAfter:   c.retryAfter,
			AddHeaders:   c.addHeaders,
		},
		AuthHeader:         c.authHeader,
		UsersFile:          c.usersFile,
		ConcurrencyMax:     c.concurrencyMax,
		ConcurrencyTimeout: c.concurrencyTimeout,
	}
}

func (s source) getenvDefault(k, def string) string {
	if v, ok := s.lookup(k); ok {
		return v
	}
	return def
}

func (s source) getenvIntDefault(k string, def int) int {
	v, ok := s.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func (s source) getenvBoolDefault(k string, def bool) bool {
	v, ok := s.lookup(k)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (s source) getenvDurationDefault(k string, def time.Duration) time.Duration {
	v, ok := s.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
