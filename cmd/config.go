package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"batchplant/internal/adapters/out/meter"
	"batchplant/internal/core/application/production"
	"batchplant/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore: BATCHPLANT_DB__HOST sets db.host.
const EnvPrefix = "BATCHPLANT_"

type Config struct {
	HTTPPort          string           `koanf:"http_port"`
	DB                DBConfig         `koanf:"db"`
	Redis             RedisConfig      `koanf:"redis"`
	Production        ProductionConfig `koanf:"production"`
	TolerancePct      float64          `koanf:"tolerance_pct"`
	ReconcileSchedule string           `koanf:"reconcile_schedule"`
	Log               LogConfig        `koanf:"log"`
}

type DBConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SslMode  string `koanf:"sslmode"`
}

// DSN returns the connection string for the gorm postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SslMode)
}

// RedisConfig configures the event stream. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Channel  string `koanf:"channel"`
}

type ProductionConfig struct {
	CapacityUnits     int           `koanf:"capacity_units"`
	DischargeDuration time.Duration `koanf:"discharge_duration"`
	InterruptPolicy   string        `koanf:"interrupt_policy"`
	AutoLogRuns       bool          `koanf:"auto_log_runs"`
	MaxAutoRunRows    int           `koanf:"max_auto_run_rows"`
}

type LogConfig struct {
	File  string `koanf:"file"`
	Level string `koanf:"level"`
}

// DefaultConfig is what an empty environment yields.
func DefaultConfig() Config {
	pc := production.DefaultConfig()
	return Config{
		HTTPPort: "8080",
		DB: DBConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "batchplant",
			SslMode: "disable",
		},
		Redis: RedisConfig{Channel: "batchplant.events"},
		Production: ProductionConfig{
			CapacityUnits:     pc.CapacityUnits,
			DischargeDuration: pc.DischargeDuration,
			InterruptPolicy:   string(pc.InterruptPolicy),
			AutoLogRuns:       pc.AutoLogRuns,
			MaxAutoRunRows:    pc.DefaultMaxRows,
		},
		TolerancePct:      meter.DefaultTolerancePct,
		ReconcileSchedule: jobs.DefaultReconciliationSchedule,
		Log:               LogConfig{Level: "info"},
	}
}

// LoadConfig reads .env, then the YAML file at path when it exists, then
// BATCHPLANT_* variables. Later sources win.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err = k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.ProductionConfig(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.LogLevel(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// ProductionConfig converts the production section into controller settings.
func (c Config) ProductionConfig() (production.Config, error) {
	policy, err := production.ParseInterruptPolicy(c.Production.InterruptPolicy)
	if err != nil {
		return production.Config{}, err
	}
	pc := production.Config{
		CapacityUnits:     c.Production.CapacityUnits,
		DischargeDuration: c.Production.DischargeDuration,
		InterruptPolicy:   policy,
		AutoLogRuns:       c.Production.AutoLogRuns,
		DefaultMaxRows:    c.Production.MaxAutoRunRows,
	}
	if err = pc.Validate(); err != nil {
		return production.Config{}, err
	}
	return pc, nil
}

func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
