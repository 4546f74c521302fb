package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type string `yaml:"type"`
	} `yaml:"backend"`
	Advisor struct {
		BuyThreshold       float64       `yaml:"buy_threshold"`
		SellThreshold      float64       `yaml:"sell_threshold"`
		TargetScale        float64       `yaml:"target_scale"`
		StopScale          float64       `yaml:"stop_scale"`
		LearningRate       float64       `yaml:"learning_rate"`
		WeightFloor        float64       `yaml:"weight_floor"`
		WeightCeiling      float64       `yaml:"weight_ceiling"`
		EvaluationHorizon  time.Duration `yaml:"evaluation_horizon"`
		HoldDriftTolerance float64       `yaml:"hold_drift_tolerance"`
	} `yaml:"advisor"`
	Analyzers struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"analyzers"`
	Monitor struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"monitor"`
	Kafka struct {
		Brokers             []string `yaml:"brokers"`
		TickTopic           string   `yaml:"tick_topic"`
		RecommendationTopic string   `yaml:"recommendation_topic"`
		LogTopic            string   `yaml:"log_topic"`
		RequiredAcks        int      `yaml:"required_acks"`
		Compression         string   `yaml:"compression"`
		Producer            struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	PriceFeed struct {
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"pricefeed"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	c.applyDefaults()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("PRICEFEED_API_KEY"); v != "" {
		c.PriceFeed.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.PriceFeed.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("ANALYZERS_URL"); v != "" {
		c.Analyzers.ServiceURL = v
	}

	return c, nil
}

// applyDefaults fills the advisor tunables that are safe to leave out
// of the YAML file.
func (c *Config) applyDefaults() {
	c.Advisor.BuyThreshold = 0.3
	c.Advisor.SellThreshold = -0.3
	c.Advisor.TargetScale = 0.1
	c.Advisor.StopScale = 0.05
	c.Advisor.LearningRate = 0.1
	c.Advisor.WeightFloor = 0.05
	c.Advisor.WeightCeiling = 5.0
	c.Advisor.EvaluationHorizon = 7 * 24 * time.Hour
	c.Advisor.HoldDriftTolerance = 0.02
	c.Monitor.Interval = time.Minute
	c.Kafka.LogTopic = "stocksage.logs"
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "direct" {
		return fmt.Errorf("backend.type must be 'kafka' or 'direct', got '%s'", c.Backend.Type)
	}
	if c.Advisor.BuyThreshold <= c.Advisor.SellThreshold {
		return fmt.Errorf("advisor.buy_threshold must exceed advisor.sell_threshold")
	}
	if c.Advisor.WeightFloor <= 0 || c.Advisor.WeightCeiling <= c.Advisor.WeightFloor {
		return fmt.Errorf("advisor weight bounds are invalid")
	}
	if c.PriceFeed.WebSocketURL != "" && len(c.PriceFeed.Symbols) == 0 {
		return fmt.Errorf("pricefeed.symbols cannot be empty when a feed is configured")
	}
	return nil
}
