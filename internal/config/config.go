package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SitesPath       string
	SamplesPath     string
	PopulationPath  string
	BoundariesPath  string
	OutputPath      string
	RegionsOutput   string
	PopulationName  string
	PopulationValue string
	BoundaryName    string
	ExcludedRegions []string
	BoundingBox     domain.BoundingBox

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional sinks. Empty brokers or database URL disables the sink.
	KafkaBrokers   []string
	KafkaSinkTopic string
	DatabaseURL    string
	PostgresTable  string
}

// Load reads configuration from environment variables (optionally .env),
// applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	box, err := parseBoundingBox()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SitesPath:       sharedcfg.EnvOrDefault("SITES_PATH", "data/sites_2018.csv"),
		SamplesPath:     sharedcfg.EnvOrDefault("SAMPLES_PATH", "data/lead_samples_2018.csv"),
		PopulationPath:  sharedcfg.EnvOrDefault("POPULATION_PATH", "data/state_pop_2018.csv"),
		BoundariesPath:  sharedcfg.EnvOrDefault("BOUNDARIES_PATH", "data/cb_2018_us_state_20m.geojson"),
		OutputPath:      sharedcfg.EnvOrDefault("OUTPUT_PATH", "lead_sites_contig_2018_per_l.csv"),
		RegionsOutput:   os.Getenv("REGIONS_OUTPUT_PATH"),
		PopulationName:  sharedcfg.EnvOrDefault("POPULATION_NAME_COLUMN", "NAME"),
		PopulationValue: sharedcfg.EnvOrDefault("POPULATION_VALUE_COLUMN", "POPESTIMATE2018"),
		BoundaryName:    sharedcfg.EnvOrDefault("BOUNDARY_NAME_PROPERTY", "NAME"),
		ExcludedRegions: splitList(sharedcfg.EnvOrDefault("EXCLUDED_REGIONS", "Alaska,Hawaii")),
		BoundingBox:     box,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:   sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "lead-samples-geolocated"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PostgresTable:  sharedcfg.EnvOrDefault("POSTGRES_TABLE", "lead_samples_contig"),
	}

	for name, v := range map[string]string{
		"SITES_PATH":      cfg.SitesPath,
		"SAMPLES_PATH":    cfg.SamplesPath,
		"POPULATION_PATH": cfg.PopulationPath,
		"BOUNDARIES_PATH": cfg.BoundariesPath,
		"OUTPUT_PATH":     cfg.OutputPath,
	} {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	return cfg, nil
}

// KafkaEnabled reports whether the Kafka sink is configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// PostgresEnabled reports whether the Postgres sink is configured.
func (c *Config) PostgresEnabled() bool { return c.DatabaseURL != "" }

func parseBoundingBox() (domain.BoundingBox, error) {
	box := domain.ContiguousUS
	for _, f := range []struct {
		env string
		dst *float64
	}{
		{"BBOX_MIN_LON", &box.MinLon},
		{"BBOX_MAX_LON", &box.MaxLon},
		{"BBOX_MIN_LAT", &box.MinLat},
		{"BBOX_MAX_LAT", &box.MaxLat},
	} {
		s := os.Getenv(f.env)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return box, fmt.Errorf("invalid %s: %w", f.env, err)
		}
		*f.dst = v
	}
	if err := box.Validate(); err != nil {
		return box, fmt.Errorf("bounding box: %w", err)
	}
	return box, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
