package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig

	Optimizer  OptimizerConfig
	Violations ViolationsConfig
	Exports    ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// OptimizerConfig supplies server-side defaults for optimization runs and
// controls the background run worker.
type OptimizerConfig struct {
	PopulationSize    int
	MaxGenerations    int
	MutationRate      float64
	CrossoverRate     float64
	EliteSize         int
	TournamentSize    int
	MaxRuntimeSeconds int
	StagnationLimit   int
	ThreadCount       int
	LogFrequency      int

	ResultRetentionDays int
	ProgressTTL         time.Duration
}

// ViolationsConfig tunes the structural analysis cache.
type ViolationsConfig struct {
	CacheTTL time.Duration
}

// ExportsConfig governs timetable export rendering.
type ExportsConfig struct {
	Enabled    bool
	SchoolName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Optimizer = OptimizerConfig{
		PopulationSize:      v.GetInt("OPTIMIZER_POPULATION_SIZE"),
		MaxGenerations:      v.GetInt("OPTIMIZER_MAX_GENERATIONS"),
		MutationRate:        v.GetFloat64("OPTIMIZER_MUTATION_RATE"),
		CrossoverRate:       v.GetFloat64("OPTIMIZER_CROSSOVER_RATE"),
		EliteSize:           v.GetInt("OPTIMIZER_ELITE_SIZE"),
		TournamentSize:      v.GetInt("OPTIMIZER_TOURNAMENT_SIZE"),
		MaxRuntimeSeconds:   v.GetInt("OPTIMIZER_MAX_RUNTIME_SECONDS"),
		StagnationLimit:     v.GetInt("OPTIMIZER_STAGNATION_LIMIT"),
		ThreadCount:         v.GetInt("OPTIMIZER_THREAD_COUNT"),
		LogFrequency:        v.GetInt("OPTIMIZER_LOG_FREQUENCY"),
		ResultRetentionDays: v.GetInt("OPTIMIZER_RESULT_RETENTION_DAYS"),
		ProgressTTL:         parseDuration(v.GetString("OPTIMIZER_PROGRESS_TTL"), time.Hour),
	}

	cfg.Violations = ViolationsConfig{
		CacheTTL: parseDuration(v.GetString("VIOLATIONS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled:    v.GetBool("ENABLE_EXPORTS"),
		SchoolName: v.GetString("EXPORT_SCHOOL_NAME"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "schedule_optimizer")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OPTIMIZER_POPULATION_SIZE", 100)
	v.SetDefault("OPTIMIZER_MAX_GENERATIONS", 1000)
	v.SetDefault("OPTIMIZER_MUTATION_RATE", 0.1)
	v.SetDefault("OPTIMIZER_CROSSOVER_RATE", 0.8)
	v.SetDefault("OPTIMIZER_ELITE_SIZE", 5)
	v.SetDefault("OPTIMIZER_TOURNAMENT_SIZE", 5)
	v.SetDefault("OPTIMIZER_MAX_RUNTIME_SECONDS", 300)
	v.SetDefault("OPTIMIZER_STAGNATION_LIMIT", 100)
	v.SetDefault("OPTIMIZER_THREAD_COUNT", 4)
	v.SetDefault("OPTIMIZER_LOG_FREQUENCY", 10)
	v.SetDefault("OPTIMIZER_RESULT_RETENTION_DAYS", 30)
	v.SetDefault("OPTIMIZER_PROGRESS_TTL", "1h")

	v.SetDefault("VIOLATIONS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORT_SCHOOL_NAME", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
