package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"port"`
	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`
	MediaDir string `mapstructure:"media_dir"`
	LogFile  string `mapstructure:"log_file"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"`

	PublicURL   string `mapstructure:"public_url"`
	APIURL      string `mapstructure:"api_url"`
	CORSOrigins string `mapstructure:"cors_origins"`

	PaymentProvider     string `mapstructure:"payment_provider"`
	Currency            string `mapstructure:"currency"`
	MPAccessToken       string `mapstructure:"mp_access_token"`
	MPWebhookSecret     string `mapstructure:"mp_webhook_secret"`
	MPBaseURL           string `mapstructure:"mp_base_url"`
	StripeKey           string `mapstructure:"stripe_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`

	StorageDriver string `mapstructure:"storage_driver"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	S3Prefix      string `mapstructure:"s3_prefix"`
	S3PublicURL   string `mapstructure:"s3_public_url"`
	ImageMaxWidth uint   `mapstructure:"image_max_width"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPFrom     string `mapstructure:"smtp_from"`
	NotifyTo     string `mapstructure:"notify_to"`

	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

var defaults = map[string]any{
	"port":                  "8080",
	"db_driver":             "sqlite",
	"db_dsn":                "wedding.db",
	"media_dir":             "./media",
	"log_file":              "",
	"jwt_secret":            "",
	"jwt_ttl":               "12h",
	"public_url":            "http://localhost:5173",
	"api_url":               "http://localhost:8080",
	"cors_origins":          "*",
	"payment_provider":      "mercadopago",
	"currency":              "BRL",
	"mp_access_token":       "",
	"mp_webhook_secret":     "",
	"mp_base_url":           "https://api.mercadopago.com",
	"stripe_key":            "",
	"stripe_webhook_secret": "",
	"storage_driver":        "local",
	"s3_bucket":             "",
	"s3_region":             "us-east-1",
	"s3_prefix":             "",
	"s3_public_url":         "",
	"image_max_width":       1600,
	"smtp_host":             "",
	"smtp_port":             587,
	"smtp_user":             "",
	"smtp_password":         "",
	"smtp_from":             "",
	"notify_to":             "",
	"admin_email":           "",
	"admin_password":        "",
}

// Load reads defaults, then the optional YAML file at path, then environment
// variables (PORT, DB_DSN, ...), later sources winning.
func Load(path string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("wedding_config")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db_driver must be sqlite or postgres, got %q", c.DBDriver)
	}
	switch c.PaymentProvider {
	case "mercadopago", "stripe":
	default:
		return fmt.Errorf("payment_provider must be mercadopago or stripe, got %q", c.PaymentProvider)
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("s3_bucket is required when storage_driver is s3")
		}
	default:
		return fmt.Errorf("storage_driver must be local or s3, got %q", c.StorageDriver)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive")
	}
	return nil
}

// LogSummary prints the non-secret settings.
func (c Config) LogSummary() {
	log.Printf("[config] PORT=%s DB_DRIVER=%s MEDIA_DIR=%s STORAGE=%s PAYMENT=%s PUBLIC_URL=%s API_URL=%s SMTP=%t",
		c.Port, c.DBDriver, c.MediaDir, c.StorageDriver, c.PaymentProvider, c.PublicURL, c.APIURL, c.SMTPHost != "")
}
