package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
}

type Server struct {
	ListenAddr    string        `yaml:"listenAddr"`
	Driver        string        `yaml:"driver"` // postgres, sqlite
	PostgresDsn   string        `yaml:"postgresDsn"`
	SqlitePath    string        `yaml:"sqlitePath"`
	JwtSecret     string        `yaml:"jwtSecret"`
	TokenAudience string        `yaml:"tokenAudience"`
	TokenTTL      time.Duration `yaml:"tokenTTL"`
	ExportBudget  time.Duration `yaml:"exportBudget"`
	EnableTrace   bool          `yaml:"enableTrace"`
	TraceEndpoint string        `yaml:"traceEndpoint"`
	LogLevel      string        `yaml:"logLevel"`
	LogFormat     string        `yaml:"logFormat"` // json, text
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func Default() Config {
	return Config{
		Server: Server{
			ListenAddr:    ":8000",
			Driver:        DriverPostgres,
			PostgresDsn:   "host=db user=postgres password=postgres dbname=postgres port=5432 sslmode=disable",
			SqlitePath:    "i18n.db",
			TokenAudience: "i18n-store",
			ExportBudget:  500 * time.Millisecond,
			TraceEndpoint: "localhost:4318",
			LogLevel:      "info",
			LogFormat:     "json",
		},
	}
}

// Load reads the yaml file at path on top of the defaults. An empty path
// yields the defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	applyEnv(&config)

	return config, config.Validate()
}

func applyEnv(config *Config) {
	if v, ok := os.LookupEnv("I18N_POSTGRES_DSN"); ok {
		config.Server.PostgresDsn = v
	}
	if v, ok := os.LookupEnv("I18N_JWT_SECRET"); ok {
		config.Server.JwtSecret = v
	}
	if v, ok := os.LookupEnv("I18N_LISTEN_ADDR"); ok {
		config.Server.ListenAddr = v
	}
}

func (c Config) Validate() error {
	switch c.Server.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Server.Driver)
	}

	if c.Server.JwtSecret == "" {
		return fmt.Errorf("server.jwtSecret must be set")
	}

	if c.Server.ExportBudget <= 0 {
		return fmt.Errorf("server.exportBudget must be positive")
	}

	return nil
}
