package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/ports"
)

var _ ports.ChangeHarvester = (*Harvester)(nil)

// Hash del árbol vacío de git: base del diff para commits sin padre.
const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Harvester recorre los commits del mirror más nuevos que el checkpoint y
// arma el digest: por cada commit su hash y timestamp, y por cada archivo
// tocado su path y el diff unificado completo.
type Harvester struct {
	dir    string
	branch string
}

func NewHarvester(dir, branch string) *Harvester {
	return &Harvester{
		dir:    dir,
		branch: branch,
	}
}

func (h *Harvester) Harvest(ctx context.Context, since time.Time) (string, error) {
	records, err := h.commitsSince(ctx, since)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return models.NoChanges, nil
	}
	return buildDigest(records), nil
}

// commitsSince lista los commits con timestamp >= since, del más viejo al más nuevo.
func (h *Harvester) commitsSince(ctx context.Context, since time.Time) ([]models.CommitRecord, error) {
	args := []string{"log", h.branch, "--reverse", "--date-order", "--format=%H%x09%cI"}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(time.RFC3339))
	}

	out, err := h.git(ctx, args...)
	if err != nil {
		return nil, domainerrors.NewHarvestError("log", err)
	}

	var records []models.CommitRecord
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		hash, rawDate, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, domainerrors.NewHarvestError("log", fmt.Errorf("línea inesperada: %q", line))
		}

		timestamp, err := time.Parse(time.RFC3339, rawDate)
		if err != nil {
			return nil, domainerrors.NewHarvestError("log", fmt.Errorf("timestamp inválido en %s: %w", hash, err))
		}

		files, err := h.fileDiffs(ctx, hash)
		if err != nil {
			return nil, err
		}

		records = append(records, models.CommitRecord{
			Hash:      hash,
			Timestamp: timestamp,
			Files:     files,
		})
	}
	return records, nil
}

// fileDiffs calcula el diff de cada archivo del commit contra su primer padre,
// o contra el árbol vacío si es el commit inicial.
func (h *Harvester) fileDiffs(ctx context.Context, hash string) ([]models.FileDiff, error) {
	parent := emptyTreeHash
	if out, err := h.git(ctx, "rev-parse", "--verify", "--quiet", hash+"^"); err == nil {
		parent = strings.TrimSpace(out)
	}

	// Los paths se listan con git diff contra el primer padre: un merge
	// también enumera los archivos que trae.
	out, err := h.git(ctx, "diff", "--name-only", parent, hash)
	if err != nil {
		return nil, domainerrors.NewHarvestError("diff", err)
	}

	var files []models.FileDiff
	for _, path := range strings.Split(strings.TrimSpace(out), "\n") {
		if path == "" {
			continue
		}
		patch, err := h.git(ctx, "diff", parent, hash, "--", path)
		if err != nil {
			return nil, domainerrors.NewHarvestError("diff", err)
		}
		files = append(files, models.FileDiff{
			Path: path,
			// Bytes que no son UTF-8 válido se reemplazan, nunca se falla.
			Patch: strings.ToValidUTF8(patch, "�"),
		})
	}
	return files, nil
}

// buildDigest concatena los records en orden. Acumula siempre: ningún commit
// ni archivo pisa la contribución de otro.
func buildDigest(records []models.CommitRecord) string {
	var digest strings.Builder
	for _, record := range records {
		fmt.Fprintf(&digest, "\nCommit %s - %s", record.Hash, record.Timestamp.Format(time.RFC3339))
		for _, file := range record.Files {
			fmt.Fprintf(&digest, "\nFile: %s\n", file.Path)
			digest.WriteString(file.Patch)
		}
	}
	return digest.String()
}

func (h *Harvester) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = h.dir
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %v → %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
