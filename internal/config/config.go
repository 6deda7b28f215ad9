package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig    `env-prefix:"APP_"`
	HTTP   HTTPConfig   `env-prefix:"HTTP_"`
	DB     DBConfig     `env-prefix:"DB_"`
	LLM    LLMConfig    `env-prefix:"LLM_"`
	Backup BackupConfig `env-prefix:"BACKUP_"`
}

type AppConfig struct {
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	Pretty   bool   `env:"PRETTY" env-default:"false"`
}

type HTTPConfig struct {
	Port string `env:"PORT" env-default:"8080"`
}

type DBConfig struct {
	Path string `env:"PATH" env-default:"notewise.db"`
}

// LLMConfig points at an OpenAI-compatible chat-completions endpoint. A
// missing token is not a startup error: LLM-backed routes report it when
// they are actually called.
type LLMConfig struct {
	BaseURL string `env:"BASE_URL" env-default:"https://models.github.ai/inference"`
	Token   string `env:"TOKEN"`
	Model   string `env:"MODEL" env-default:"openai/gpt-4.1-mini"`
}

// BackupConfig drives encrypted database snapshots to S3-compatible
// storage. Backups stay disabled until the bucket, credentials and
// passphrase are all set.
type BackupConfig struct {
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3Region      string `env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`
	Passphrase    string `env:"PASSPHRASE"`
	ScheduleHour  int    `env:"SCHEDULE_HOUR" env-default:"3"`
	RetentionDays int    `env:"RETENTION_DAYS" env-default:"30"`
}

// Parse loads .env if present, then reads configuration from the
// environment.
func Parse() (Config, error) {
	godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse cfg: %w", err)
	}

	return cfg, nil
}
