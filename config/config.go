package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const AVATAR_SIZE = 285

// ConfigFileEnvVar points at an optional YAML config file. Env vars override
// whatever the file sets.
const ConfigFileEnvVar = "ONEMSU_CONFIG"

type DBConfig struct {
	Host string `yaml:"host"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	Name string `yaml:"name"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from"`
}

type Neo4jConfig struct {
	URI    string `yaml:"uri"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	DBName string `yaml:"dbName"`
}

type Config struct {
	Port            string       `yaml:"port"`
	FrontendOrigins []string     `yaml:"frontendOrigins"`
	JWTSecret       string       `yaml:"jwtSecret"`
	OTPSalt         string       `yaml:"otpSalt"`
	DataDir         string       `yaml:"dataDir"`
	FirebaseBucket  string       `yaml:"firebaseBucket"`
	DB              *DBConfig    `yaml:"db"`
	SMTP            *SMTPConfig  `yaml:"smtp"`
	Neo4j           *Neo4jConfig `yaml:"neo4j"`
}

// Load reads the optional config file, then lets env vars override it.
// A .env file is honored the same way the agent repos do it.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv(ConfigFileEnvVar); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %v: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %v: %w", path, err)
		}
	}

	overrideString(&cfg.Port, "PORT")
	if origins := os.Getenv("FE_ORIGINS"); origins != "" {
		cfg.FrontendOrigins = strings.Split(origins, ";")
	}
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.OTPSalt, "OTP_SALT")
	overrideString(&cfg.DataDir, "DATA_DIR")
	overrideString(&cfg.FirebaseBucket, "FIREBASE_BUCKET")

	if host := os.Getenv("DB_HOST"); host != "" {
		if cfg.DB == nil {
			cfg.DB = &DBConfig{}
		}
		cfg.DB.Host = host
	}
	if cfg.DB != nil {
		overrideString(&cfg.DB.User, "DB_USER")
		overrideString(&cfg.DB.Pass, "DB_PASS")
		overrideString(&cfg.DB.Name, "DB_NAME")
	}

	if host := os.Getenv("SMTP_HOST"); host != "" {
		if cfg.SMTP == nil {
			cfg.SMTP = &SMTPConfig{}
		}
		cfg.SMTP.Host = host
	}
	if cfg.SMTP != nil {
		overrideString(&cfg.SMTP.Port, "SMTP_PORT")
		overrideString(&cfg.SMTP.User, "SMTP_USER")
		overrideString(&cfg.SMTP.Pass, "SMTP_PASS")
		overrideString(&cfg.SMTP.From, "SMTP_FROM")
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		if cfg.Neo4j == nil {
			cfg.Neo4j = &Neo4jConfig{}
		}
		cfg.Neo4j.URI = uri
	}
	if cfg.Neo4j != nil {
		overrideString(&cfg.Neo4j.User, "NEO4J_USER")
		overrideString(&cfg.Neo4j.Pass, "NEO4J_PASS")
		overrideString(&cfg.Neo4j.DBName, "NEO4J_DB")
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.OTPSalt == "" {
		cfg.OTPSalt = "otp-demo-salt"
	}
	if cfg.Neo4j != nil && cfg.Neo4j.DBName == "" {
		cfg.Neo4j.DBName = "neo4j"
	}
	if cfg.SMTP != nil && cfg.SMTP.From == "" {
		if cfg.SMTP.User != "" {
			cfg.SMTP.From = cfg.SMTP.User
		} else {
			cfg.SMTP.From = "no-reply@example.com"
		}
	}
}

func (cfg *Config) validate() error {
	if cfg.Port == "" {
		return fmt.Errorf("$PORT must be set")
	}
	if cfg.DB != nil && (cfg.DB.User == "" || cfg.DB.Host == "") {
		return fmt.Errorf("DB_HOST and DB_USER must both be set when using mysql")
	}
	return nil
}

// UsesMySQL reports whether a relational store is configured. Without one the
// server runs against the JSON file store under DataDir.
func (cfg *Config) UsesMySQL() bool {
	return cfg.DB != nil
}

func overrideString(target *string, envVar string) {
	if val := os.Getenv(envVar); val != "" {
		*target = val
	}
}
