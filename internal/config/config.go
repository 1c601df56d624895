package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
	"github.com/joho/godotenv"
)

type (
	// Config se construye una sola vez al arrancar y se pasa por parámetro
	// a cada componente. Ningún componente lee el entorno por su cuenta.
	Config struct {
		RepoURL    string
		Branch     string
		Credential models.TokenCredential
		Identity   models.RepoIdentity

		MirrorDir string
		DBFile    string
		Lookback  time.Duration

		ProjectDescription string
		ToEmail            string
		Language           string

		Analysis AnalysisConfig
		SMTP     SMTPConfig
	}

	AnalysisConfig struct {
		BaseURL  string
		Endpoint string
		APIKey   string
		Model    string
	}

	SMTPConfig struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
)

const (
	defaultBranch    = "main"
	defaultMirrorDir = "./repos"
	defaultModel     = "llama3.2-cybersec:latest"
	defaultSMTPPort  = 587
	defaultLang      = "en"

	// Ventana inicial para un mirror recién clonado: 10 días.
	defaultLookback = 240 * time.Hour
)

// Load lee la configuración del entorno. Si envFile no está vacío se carga
// ese archivo con godotenv; si no, se intenta el .env del directorio actual
// como best-effort.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, domainerrors.NewConfigError("env_file", "no se pudo cargar el archivo de entorno", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		RepoURL:            os.Getenv("REPO_URL"),
		Branch:             envOr("REPO_BRANCH", defaultBranch),
		Credential:         models.TokenCredential{Token: os.Getenv("PERSONAL_TOKEN")},
		MirrorDir:          envOr("MIRROR_DIR", defaultMirrorDir),
		DBFile:             os.Getenv("DB_FILE"),
		Lookback:           defaultLookback,
		ProjectDescription: os.Getenv("PROJECT_DESCRIPTION"),
		ToEmail:            os.Getenv("TO_EMAIL"),
		Language:           envOr("VIGIA_LANG", defaultLang),
		Analysis: AnalysisConfig{
			BaseURL:  os.Getenv("BASE_LLM_API"),
			Endpoint: os.Getenv("PROMPT_LLM_API_ENDPOINT"),
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    envOr("LLM_MODEL", defaultModel),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_SERVER"),
			Port:     defaultSMTPPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("FROM_EMAIL"),
		},
	}

	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, domainerrors.NewConfigError("SMTP_PORT", "el puerto SMTP no es un número", err)
		}
		cfg.SMTP.Port = port
	}

	if raw := os.Getenv("LOOKBACK_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, domainerrors.NewConfigError("LOOKBACK_DAYS", "la ventana de lookback debe ser un número de días positivo", err)
		}
		cfg.Lookback = time.Duration(days) * 24 * time.Hour
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	identity, err := models.NewRepoIdentity(cfg.RepoURL, cfg.Branch)
	if err != nil {
		return nil, domainerrors.NewConfigError("REPO_URL", "la URL del repositorio no es válida", err)
	}
	cfg.Identity = identity

	return cfg, nil
}

// MirrorPath es el directorio local del mirror para esta identidad.
func (c *Config) MirrorPath() string {
	return filepath.Join(c.MirrorDir, c.Identity.Name)
}

func validate(cfg *Config) error {
	required := []struct {
		field string
		value string
	}{
		{"REPO_URL", cfg.RepoURL},
		{"DB_FILE", cfg.DBFile},
		{"BASE_LLM_API", cfg.Analysis.BaseURL},
		{"PROMPT_LLM_API_ENDPOINT", cfg.Analysis.Endpoint},
		{"LLM_API_KEY", cfg.Analysis.APIKey},
		{"SMTP_SERVER", cfg.SMTP.Host},
		{"SMTP_USERNAME", cfg.SMTP.Username},
		{"SMTP_PASSWORD", cfg.SMTP.Password},
		{"FROM_EMAIL", cfg.SMTP.From},
		{"TO_EMAIL", cfg.ToEmail},
	}

	for _, r := range required {
		if r.value == "" {
			return domainerrors.NewConfigError(r.field, "variable de entorno requerida no definida", nil)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
