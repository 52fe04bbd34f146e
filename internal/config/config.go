package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	BaseURL    string `yaml:"base_url" env-default:"http://localhost:8080"`
	Tokens     `yaml:"tokens"`
	Session    `yaml:"session"`
	Mailer     `yaml:"mailer"`
	RabbitMQ   `yaml:"rabbitmq"`
	Postgres   `yaml:"postgres"`
	HTTPServer `yaml:"http_server"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env-required:"true"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Tokens struct {
	VerificationTokenTTL    time.Duration `yaml:"verification_token_ttl" env-default:"24h"`
	VerificationTokenSecret string        `yaml:"verification_token_secret" env:"VERIFICATION_TOKEN_SECRET" env-required:"true"`
}

type Session struct {
	CookieName string        `yaml:"cookie_name" env-default:"vetline_session"`
	IdleTTL    time.Duration `yaml:"idle_ttl" env-default:"30m"`
}

// Mailer selects the delivery channel: "smtp" sends directly, "queue"
// publishes a job for the mail worker, "log" only writes the link to the
// application log (non-production).
type Mailer struct {
	Mode string `yaml:"mode" env-default:"log"`
	SMTP `yaml:"smtp"`
}

type SMTP struct {
	Host     string `yaml:"host" env-default:"smtp.gmail.com"`
	Port     int    `yaml:"port" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from"`
}

type RabbitMQ struct {
	URL       string `yaml:"url"`
	QueueName string `yaml:"queue_name" env-default:"verification_emails"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}
