package services

import (
	"context"
	"errors"
	"time"

	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/ports"
	"github.com/Tomas-vilte/RepoVigia/internal/i18n"
	"github.com/Tomas-vilte/RepoVigia/internal/logger"
)

// PipelineDeps agrupa los colaboradores del orquestador.
type PipelineDeps struct {
	Identity  models.RepoIdentity
	Recipient string

	Store     ports.CheckpointStore
	Mirror    ports.RepositoryMirror
	Harvester ports.ChangeHarvester
	Prompts   *PromptBuilder
	Analyzer  ports.AnalysisService
	Notifier  ports.Notifier

	Trans *i18n.Translations
}

// Pipeline es el orquestador de un run: mirror → checkpoint → harvest →
// (no-op | prompt → análisis → mail) → avance del checkpoint. El checkpoint
// se escribe una única vez, al final, con la hora capturada al inicio del
// harvest; un fallo fatal en cualquier etapa deja el checkpoint intacto.
type Pipeline struct {
	deps PipelineDeps
	now  func() time.Time
}

// RunResult es el resultado de un run terminado en DONE.
type RunResult struct {
	NoChanges bool
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		deps: deps,
		now:  time.Now,
	}
}

func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	fresh, err := p.deps.Mirror.Ensure(ctx)
	if err != nil {
		var updateErr *domainerrors.MirrorUpdateError
		if !errors.As(err, &updateErr) {
			return nil, err
		}
		// Pull fallido: seguimos con el mirror existente aunque esté viejo.
		logger.Warn(ctx, p.deps.Trans.GetMessage("mirror_update_warning", 0, map[string]interface{}{
			"Error": updateErr.Err,
		}))
	}

	since, err := p.deps.Store.LastScan(ctx, p.deps.Identity, fresh)
	if err != nil {
		return nil, err
	}

	// La hora del checkpoint se captura antes del harvest: un commit que
	// entre a mitad del run queda para el próximo, nunca se saltea.
	startedAt := p.now()

	digest, err := p.deps.Harvester.Harvest(ctx, since)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	prompt, err := p.deps.Prompts.Build(digest)
	switch {
	case errors.Is(err, ErrNoChanges):
		result.NoChanges = true
	case err != nil:
		return nil, err
	default:
		verdict, err := p.deps.Analyzer.Analyze(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if err := p.deps.Notifier.Notify(ctx, p.deps.Recipient, p.deps.Identity.Subject(), verdict); err != nil {
			return nil, err
		}
	}

	if err := p.deps.Store.RecordScan(ctx, p.deps.Identity, startedAt); err != nil {
		return nil, err
	}
	return result, nil
}
