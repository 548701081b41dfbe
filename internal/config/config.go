package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"screener-engine/internal/domain"
)

// Config holds all service configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	OKX struct {
		BaseURL           string        `yaml:"base_url"`
		Timeframe         string        `yaml:"timeframe"`
		CandleLimit       int           `yaml:"candle_limit"`
		MaxInstruments    int           `yaml:"max_instruments"`
		BatchSize         int           `yaml:"batch_size"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"okx"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
		RunOnStart   bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Firebase struct {
		NotifyMinScore float64       `yaml:"notify_min_score"`
		Cooldown       time.Duration `yaml:"cooldown"`
	} `yaml:"firebase"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Engine domain.EngineConfig `yaml:"engine"`
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{Engine: domain.DefaultEngineConfig()}
	cfg.Server.Addr = ":8080"
	cfg.OKX.BaseURL = "https://www.okx.com/api/v5"
	cfg.OKX.Timeframe = "1H"
	cfg.OKX.CandleLimit = 100
	cfg.OKX.MaxInstruments = 200
	cfg.OKX.BatchSize = 20
	cfg.OKX.RequestsPerSecond = 10
	cfg.OKX.Timeout = 10 * time.Second
	cfg.Schedule.AnalysisCron = "0 */15 * * * *"
	cfg.Schedule.RunOnStart = true
	cfg.Redis.TTL = 5 * time.Minute
	cfg.Firebase.NotifyMinScore = 80
	cfg.Firebase.Cooldown = 5 * time.Minute
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load applies, in order: defaults, the YAML file at path (if present), a
// .env file and environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("SERVER_ADDR", &c.Server.Addr)
	setString("OKX_BASE_URL", &c.OKX.BaseURL)
	setString("OKX_TIMEFRAME", &c.OKX.Timeframe)
	setString("ANALYSIS_CRON", &c.Schedule.AnalysisCron)
	setString("DATABASE_URL", &c.Database.URL)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	if v := os.Getenv("PORT"); v != "" && os.Getenv("SERVER_ADDR") == "" {
		c.Server.Addr = ":" + v
	}

	if v := os.Getenv("SIMULATED_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SIMULATED_MODE: %w", err)
		}
		c.Engine.SimulatedMode = b
	}
	if v := os.Getenv("ADVANCED_INDICATORS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ADVANCED_INDICATORS: %w", err)
		}
		c.Engine.AdvancedIndicators = b
	}
	if v := os.Getenv("SCREENING_MODE"); v != "" {
		switch strings.ToLower(v) {
		case "permissive":
			c.Engine.Ranking.MinScore = domain.PermissiveMinScore
		case "strict":
			c.Engine.Ranking.MinScore = domain.StrictMinScore
		default:
			return fmt.Errorf("SCREENING_MODE: unknown mode %q", v)
		}
	}

	floats := map[string]*float64{
		"MIN_SCORE":        &c.Engine.Ranking.MinScore,
		"MIN_VOLUME":       &c.Engine.Filters.MinVolume,
		"NOTIFY_MIN_SCORE": &c.Firebase.NotifyMinScore,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"MAX_RESULTS":     &c.Engine.Ranking.MaxResults,
		"WORKERS":         &c.Engine.Ranking.Workers,
		"MAX_INSTRUMENTS": &c.OKX.MaxInstruments,
		"REDIS_DB":        &c.Redis.DB,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	if v := os.Getenv("SIMULATION_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SIMULATION_SEED: %w", err)
		}
		c.Engine.SimulationSeed = n
	}
	return nil
}

// Validate checks service settings and the engine config.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", domain.ErrInvalidConfig)
	}
	if c.OKX.BaseURL == "" {
		return fmt.Errorf("%w: okx.base_url is required", domain.ErrInvalidConfig)
	}
	if c.OKX.CandleLimit <= 0 || c.OKX.CandleLimit > 300 {
		return fmt.Errorf("%w: okx.candle_limit must be in [1,300]", domain.ErrInvalidConfig)
	}
	if c.OKX.BatchSize <= 0 || c.OKX.MaxInstruments <= 0 {
		return fmt.Errorf("%w: okx.batch_size and okx.max_instruments must be positive", domain.ErrInvalidConfig)
	}
	if c.OKX.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: okx.requests_per_second must be positive", domain.ErrInvalidConfig)
	}
	if c.Schedule.AnalysisCron == "" {
		return fmt.Errorf("%w: schedule.analysis_cron is required", domain.ErrInvalidConfig)
	}
	if c.Redis.TTL <= 0 {
		return fmt.Errorf("%w: redis.ttl must be positive", domain.ErrInvalidConfig)
	}
	return c.Engine.Validate()
}
