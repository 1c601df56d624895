package config

import (
	"errors"
	"testing"
	"time"

	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REPO_URL", "https://github.com/acme/myrepo.git")
	t.Setenv("DB_FILE", "./scans.db")
	t.Setenv("BASE_LLM_API", "https://llm.example.com")
	t.Setenv("PROMPT_LLM_API_ENDPOINT", "/v1/chat/completions")
	t.Setenv("LLM_API_KEY", "test-api-key")
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "bot@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("FROM_EMAIL", "bot@example.com")
	t.Setenv("TO_EMAIL", "security@example.com")

	// Opcionales: que no se filtren del entorno del runner
	t.Setenv("REPO_BRANCH", "")
	t.Setenv("PERSONAL_TOKEN", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LOOKBACK_DAYS", "")
	t.Setenv("MIRROR_DIR", "")
	t.Setenv("VIGIA_LANG", "")
}

func TestLoad(t *testing.T) {
	t.Run("carga completa con defaults", func(t *testing.T) {
		// arrange
		setRequiredEnv(t)

		// act
		cfg, err := Load("")

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "main", cfg.Branch)
		assert.Equal(t, "myrepo", cfg.Identity.Name)
		assert.Equal(t, 587, cfg.SMTP.Port)
		assert.Equal(t, 240*time.Hour, cfg.Lookback)
		assert.Equal(t, "llama3.2-cybersec:latest", cfg.Analysis.Model)
		assert.Equal(t, "./repos", cfg.MirrorDir)
		assert.Equal(t, "en", cfg.Language)
	})

	t.Run("respeta los valores explícitos", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("REPO_BRANCH", "develop")
		t.Setenv("SMTP_PORT", "2525")
		t.Setenv("LOOKBACK_DAYS", "3")
		t.Setenv("PERSONAL_TOKEN", "tok123")

		cfg, err := Load("")

		assert.NoError(t, err)
		assert.Equal(t, "develop", cfg.Branch)
		assert.Equal(t, "develop", cfg.Identity.Branch)
		assert.Equal(t, 2525, cfg.SMTP.Port)
		assert.Equal(t, 72*time.Hour, cfg.Lookback)
		assert.False(t, cfg.Credential.IsZero())
	})

	t.Run("falta la API key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LLM_API_KEY", "")

		_, err := Load("")

		var cfgErr *domainerrors.ConfigError
		assert.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "LLM_API_KEY", cfgErr.Field)
	})

	t.Run("puerto SMTP inválido", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SMTP_PORT", "no-numerico")

		_, err := Load("")

		var cfgErr *domainerrors.ConfigError
		assert.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "SMTP_PORT", cfgErr.Field)
	})

	t.Run("archivo de entorno inexistente", func(t *testing.T) {
		setRequiredEnv(t)

		_, err := Load("./no-existe.env")

		assert.Error(t, err)
	})

	t.Run("MirrorPath junta el directorio con el nombre del repo", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("MIRROR_DIR", "/var/lib/vigia")

		cfg, err := Load("")

		assert.NoError(t, err)
		assert.Equal(t, "/var/lib/vigia/myrepo", cfg.MirrorPath())
	})
}
