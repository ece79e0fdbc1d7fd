package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Geo   GeoConfig
	Match MatchConfig
	Fees  FeeConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=stagepass"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// GeoConfig mirrors the per-call acquisition options.
type GeoConfig struct {
	EnableHighAccuracy bool `env:"GEO_HIGH_ACCURACY,  default=true"`
	TimeoutMS          int  `env:"GEO_TIMEOUT_MS,     default=12000"`
	MaximumAgeMS       int  `env:"GEO_MAXIMUM_AGE_MS, default=300000"`
}

// Timeout returns the acquisition timeout as a duration.
func (g GeoConfig) Timeout() time.Duration { return time.Duration(g.TimeoutMS) * time.Millisecond }

// MaximumAge returns the maximum acceptable cached-reading age.
func (g GeoConfig) MaximumAge() time.Duration {
	return time.Duration(g.MaximumAgeMS) * time.Millisecond
}

// MatchConfig tunes the proximity matcher.
type MatchConfig struct {
	DefaultRadiusMeters float64 `env:"MATCH_DEFAULT_RADIUS_M,    default=274"`
	MaxRadiusMeters     float64 `env:"MATCH_MAX_RADIUS_M,        default=8047"`
	TimeWindowHours     float64 `env:"MATCH_TIME_WINDOW_HOURS,   default=4"`
	MinConfidence       float64 `env:"MATCH_MIN_CONFIDENCE,      default=50"`
	HighConfidence      float64 `env:"MATCH_HIGH_CONFIDENCE,     default=90"`
	MediumConfidence    float64 `env:"MATCH_MEDIUM_CONFIDENCE,   default=70"`
	Workers             int     `env:"MATCH_WORKERS,             default=4"`
	ResultTTLSeconds    int     `env:"MATCH_RESULT_TTL_SECONDS,  default=300"`
}

// TimeWindow returns the temporal relevance window as a duration.
func (m MatchConfig) TimeWindow() time.Duration {
	return time.Duration(m.TimeWindowHours * float64(time.Hour))
}

// ResultTTL returns how long cached match results stay valid.
func (m MatchConfig) ResultTTL() time.Duration {
	return time.Duration(m.ResultTTLSeconds) * time.Second
}

// FeeConfig holds the donation split rate table and amount bounds.
type FeeConfig struct {
	PlatformRate        float64 `env:"FEE_PLATFORM_RATE,         default=0.15"`
	ProcessingRate      float64 `env:"FEE_PROCESSING_RATE,       default=0.029"`
	ProcessingFlatCents int64   `env:"FEE_PROCESSING_FLAT_CENTS, default=30"`
	DirectReferralRate  float64 `env:"FEE_DIRECT_REFERRAL_RATE,  default=0.025"`
	Tier2ReferralRate   float64 `env:"FEE_TIER2_REFERRAL_RATE,   default=0.025"`
	MinAmountCents      int64   `env:"FEE_MIN_AMOUNT_CENTS,      default=1"`
	MaxAmountCents      int64   `env:"FEE_MAX_AMOUNT_CENTS,      default=100000000"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
