package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/ports"
)

var _ ports.RepositoryMirror = (*Mirror)(nil)

// Mirror mantiene la copia local del branch objetivo usando el git del sistema.
type Mirror struct {
	repoURL string
	branch  string
	dir     string
	cred    models.TokenCredential
}

func NewMirror(repoURL, branch, dir string, cred models.TokenCredential) *Mirror {
	return &Mirror{
		repoURL: repoURL,
		branch:  branch,
		dir:     dir,
		cred:    cred,
	}
}

// Ensure clona el repositorio si el directorio no existe, o hace pull si ya está.
// Devuelve true solo en el camino del clone inicial.
func (m *Mirror) Ensure(ctx context.Context) (bool, error) {
	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		if err := m.clone(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := m.pull(ctx); err != nil {
		// Recuperable: el caller decide seguir con el mirror viejo.
		return false, err
	}
	return false, nil
}

func (m *Mirror) clone(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(m.dir), 0755); err != nil {
		return domainerrors.NewMirrorCloneError(m.repoURL, err)
	}

	// La URL autenticada se arma acá y solo vive en el argv del clone.
	cloneURL, err := m.cred.InjectInto(m.repoURL)
	if err != nil {
		return domainerrors.NewMirrorCloneError(m.repoURL, err)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--branch", m.branch, cloneURL, m.dir)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := m.cred.Redact(strings.TrimSpace(stderr.String()))
		return domainerrors.NewMirrorCloneError(m.repoURL, fmt.Errorf("%v → %s", err, detail))
	}
	return nil
}

func (m *Mirror) pull(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "git", "pull", "origin", m.branch)
	cmd.Dir = m.dir
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := m.cred.Redact(strings.TrimSpace(stderr.String()))
		return domainerrors.NewMirrorUpdateError(fmt.Errorf("%v → %s", err, detail))
	}
	return nil
}
