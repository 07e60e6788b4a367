package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tillbook"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tillbook"`
		MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	}

	Server struct {
		Timeout       time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownGrace time.Duration `envconfig:"SERVER_SHUTDOWN_GRACE" default:"15s"`
	}

	Redis struct {
		Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
		Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password string `envconfig:"REDIS_PASSWORD" default:""`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Ledger struct {
		Checkpoints   bool          `envconfig:"LEDGER_CHECKPOINTS" default:"true"`
		CheckpointTTL time.Duration `envconfig:"LEDGER_CHECKPOINT_TTL" default:"24h"`
		EventBuffer   int           `envconfig:"LEDGER_EVENT_BUFFER" default:"256"`
		EventsKey     string        `envconfig:"LEDGER_EVENTS_KEY" default:"tillbook:events"`
	}

	// Archive targets S3 when Bucket is set, otherwise the local Dir.
	Archive struct {
		Bucket    string `envconfig:"ARCHIVE_BUCKET"`
		Endpoint  string `envconfig:"ARCHIVE_ENDPOINT"`
		Region    string `envconfig:"ARCHIVE_REGION" default:"eu-west-1"`
		AccessKey string `envconfig:"ARCHIVE_ACCESS_KEY"`
		SecretKey string `envconfig:"ARCHIVE_SECRET_KEY"`
		Prefix    string `envconfig:"ARCHIVE_PREFIX" default:"z-reports"`
		Dir       string `envconfig:"ARCHIVE_DIR" default:"./archive"`
		Language  string `envconfig:"ARCHIVE_LANGUAGE" default:"en"`
	}

	Operator struct {
		RestaurantID string `envconfig:"OPERATOR_RESTAURANT_ID"`
		StaffID      string `envconfig:"OPERATOR_STAFF_ID"`
		APIURL       string `envconfig:"OPERATOR_API_URL" default:"http://localhost:8080/api/v1"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// OperatorIDs returns the restaurant and staff member the TUI acts for.
func (c *Config) OperatorIDs() (restaurantID, staffID uuid.UUID, err error) {
	restaurantID, err = uuid.Parse(c.Operator.RestaurantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parsing OPERATOR_RESTAURANT_ID: %w", err)
	}

	staffID, err = uuid.Parse(c.Operator.StaffID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parsing OPERATOR_STAFF_ID: %w", err)
	}

	return restaurantID, staffID, nil
}

// Load reads an optional .env file and then the process environment. Real environment
// variables win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
