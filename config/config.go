package config

import (
	// Local Packages
	errors "receipt-verifier/errors"
)

var DefaultConfig = []byte(`
application: "receipt-verifier"

logger:
  level: "debug"

is_prod_mode: false

server:
  listen_addr: ":8080"

mongo:
  uri: "mongodb://localhost:27017"
  database: "receipts"

redis:
  uri: "localhost:6379"
  password: ""

kafka:
  publish: false
  brokers: []
  topic: "verified-receipts"

rate_limit:
  enabled: true
  requests: 60
  window_seconds: 60

operator:
  name: "Sosha Hops"
  accounts:
    CBE: "56042704"
    ABYSSINIA: "90231478"

providers:
  timeout_seconds: 20
  cbe:
    base_url: "https://apps.cbe.com.et:100"
  telebirr:
    receipt_url: "https://transactioninfo.ethiotelecom.et/receipt"
    proxy_url: "https://verify.sosha.et/telebirr/receipt"
    try_primary_first: true
  dashen:
    base_url: "https://receipt.dashenbanksc.com/receipt"
  abyssinia:
    base_url: "https://cs.bankofabyssinia.com/api/onlineSlip"
  cbebirr:
    base_url: "https://cbebirrportal.cbe.com.et/api/receipt"
`)

type Config struct {
	Application string    `koanf:"application"`
	Logger      Logger    `koanf:"logger"`
	IsProdMode  bool      `koanf:"is_prod_mode"`
	Server      Server    `koanf:"server"`
	Mongo       Mongo     `koanf:"mongo"`
	Redis       Redis     `koanf:"redis"`
	Kafka       Kafka     `koanf:"kafka"`
	RateLimit   RateLimit `koanf:"rate_limit"`
	Operator    Operator  `koanf:"operator"`
	Providers   Providers `koanf:"providers"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Server struct {
	ListenAddr string `koanf:"listen_addr"`
}

type Mongo struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type Redis struct {
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
}

type Kafka struct {
	Publish bool     `koanf:"publish"`
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type RateLimit struct {
	Enabled       bool `koanf:"enabled"`
	Requests      int  `koanf:"requests"`
	WindowSeconds int  `koanf:"window_seconds"`
}

// Operator names the party running this service and the account suffix it
// expects per bank. Banks without an entry skip the ownership gate.
type Operator struct {
	Name     string            `koanf:"name"`
	Accounts map[string]string `koanf:"accounts"`
}

type Providers struct {
	TimeoutSeconds int       `koanf:"timeout_seconds"`
	CBE            CBE       `koanf:"cbe"`
	Telebirr       Telebirr  `koanf:"telebirr"`
	Dashen         Dashen    `koanf:"dashen"`
	Abyssinia      Abyssinia `koanf:"abyssinia"`
	CBEBirr        CBEBirr   `koanf:"cbebirr"`
}

type CBE struct {
	BaseURL string `koanf:"base_url"`
}

type Telebirr struct {
	ReceiptURL      string `koanf:"receipt_url"`
	ProxyURL        string `koanf:"proxy_url"`
	TryPrimaryFirst bool   `koanf:"try_primary_first"`
}

type Dashen struct {
	BaseURL string `koanf:"base_url"`
}

type Abyssinia struct {
	BaseURL string `koanf:"base_url"`
}

type CBEBirr struct {
	BaseURL string `koanf:"base_url"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if c.Server.ListenAddr == "" {
		ve.Add("server.listen_addr", "cannot be empty")
	}
	if c.Mongo.URI == "" {
		ve.Add("mongo.uri", "cannot be empty")
	}
	if c.Mongo.Database == "" {
		ve.Add("mongo.database", "cannot be empty")
	}
	if c.RateLimit.Enabled && c.Redis.URI == "" {
		ve.Add("redis.uri", "cannot be empty when rate_limit is enabled")
	}
	if c.Kafka.Publish && len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty when kafka.publish is enabled")
	}
	if c.Operator.Name == "" {
		ve.Add("operator.name", "cannot be empty")
	}
	if c.Providers.TimeoutSeconds <= 0 {
		ve.Add("providers.timeout_seconds", "must be positive")
	}
	if c.Providers.CBE.BaseURL == "" {
		ve.Add("providers.cbe.base_url", "cannot be empty")
	}
	if c.Providers.Telebirr.ReceiptURL == "" {
		ve.Add("providers.telebirr.receipt_url", "cannot be empty")
	}
	if c.Providers.Telebirr.ProxyURL == "" {
		ve.Add("providers.telebirr.proxy_url", "cannot be empty")
	}
	if c.Providers.Dashen.BaseURL == "" {
		ve.Add("providers.dashen.base_url", "cannot be empty")
	}
	if c.Providers.Abyssinia.BaseURL == "" {
		ve.Add("providers.abyssinia.base_url", "cannot be empty")
	}
	if c.Providers.CBEBirr.BaseURL == "" {
		ve.Add("providers.cbebirr.base_url", "cannot be empty")
	}

	return ve.Err()
}
