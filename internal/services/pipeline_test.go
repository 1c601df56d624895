package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
	"github.com/Tomas-vilte/RepoVigia/internal/i18n"
	"github.com/Tomas-vilte/RepoVigia/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestPipeline(t *testing.T, store *MockCheckpointStore, mirror *MockRepositoryMirror, harvester *MockChangeHarvester, analyzer *MockAnalysisService, notifier *MockNotifier) *Pipeline {
	t.Helper()
	trans, err := i18n.NewTranslations("en")
	if err != nil {
		t.Fatalf("Error creando las traducciones: %v", err)
	}

	return NewPipeline(PipelineDeps{
		Identity:  models.RepoIdentity{Name: "myrepo", Branch: "main"},
		Recipient: "security@example.com",
		Store:     store,
		Mirror:    mirror,
		Harvester: harvester,
		Prompts:   NewPromptBuilder("proyecto de prueba"),
		Analyzer:  analyzer,
		Notifier:  notifier,
		Trans:     trans,
	})
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	since := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	t.Run("run sin cambios: ni análisis ni mail, pero el checkpoint avanza", func(t *testing.T) {
		// arrange
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		mirror.On("Ensure", ctx).Return(true, nil)
		store.On("LastScan", ctx, mock.Anything, true).Return(since, nil)
		harvester.On("Harvest", ctx, since).Return(models.NoChanges, nil)
		store.On("RecordScan", ctx, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil)

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)

		// act
		result, err := pipeline.Run(ctx)

		// assert
		assert.NoError(t, err)
		assert.True(t, result.NoChanges)
		analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		store.AssertCalled(t, "RecordScan", ctx, mock.Anything, mock.AnythingOfType("time.Time"))
	})

	t.Run("run con 3 commits: un análisis con todos los diffs y un solo mail", func(t *testing.T) {
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		digest := strings.Join([]string{
			"\nCommit aaa - 2026-08-21T09:00:00Z\nFile: a.go\n+uno",
			"\nCommit bbb - 2026-08-22T09:00:00Z\nFile: b.go\n+dos",
			"\nCommit ccc - 2026-08-23T09:00:00Z\nFile: c.go\n+tres",
		}, "")

		mirror.On("Ensure", ctx).Return(false, nil)
		store.On("LastScan", ctx, mock.Anything, false).Return(since, nil)
		harvester.On("Harvest", ctx, since).Return(digest, nil)
		analyzer.On("Analyze", ctx, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "+uno") &&
				strings.Contains(prompt, "+dos") &&
				strings.Contains(prompt, "+tres")
		})).Return("<html><body>veredicto</body></html>", nil)
		notifier.On("Notify", ctx, "security@example.com", "myrepo (branch: main) code update", "<html><body>veredicto</body></html>").Return(nil)
		store.On("RecordScan", ctx, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil)

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)

		result, err := pipeline.Run(ctx)

		assert.NoError(t, err)
		assert.False(t, result.NoChanges)
		analyzer.AssertNumberOfCalls(t, "Analyze", 1)
		notifier.AssertNumberOfCalls(t, "Notify", 1)
		store.AssertCalled(t, "RecordScan", ctx, mock.Anything, mock.AnythingOfType("time.Time"))
	})

	t.Run("la hora del checkpoint se captura al inicio del harvest", func(t *testing.T) {
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		startedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

		mirror.On("Ensure", ctx).Return(false, nil)
		store.On("LastScan", ctx, mock.Anything, false).Return(since, nil)
		harvester.On("Harvest", ctx, since).Return(models.NoChanges, nil)
		store.On("RecordScan", ctx, mock.Anything, startedAt).Return(nil)

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)
		pipeline.now = func() time.Time { return startedAt }

		_, err := pipeline.Run(ctx)

		assert.NoError(t, err)
		store.AssertCalled(t, "RecordScan", ctx, mock.Anything, startedAt)
	})

	t.Run("análisis con HTTP 500: sin mail y sin avance de checkpoint", func(t *testing.T) {
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		mirror.On("Ensure", ctx).Return(false, nil)
		store.On("LastScan", ctx, mock.Anything, false).Return(since, nil)
		harvester.On("Harvest", ctx, since).Return("\nCommit aaa - 2026-08-21T09:00:00Z\nFile: a.go\n+uno", nil)
		analyzer.On("Analyze", ctx, mock.Anything).Return("", domainerrors.NewAnalysisError(500, "boom"))

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)

		_, err := pipeline.Run(ctx)

		var analysisErr *domainerrors.AnalysisError
		assert.True(t, errors.As(err, &analysisErr))
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "RecordScan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail fallido no avanza el checkpoint", func(t *testing.T) {
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		mirror.On("Ensure", ctx).Return(false, nil)
		store.On("LastScan", ctx, mock.Anything, false).Return(since, nil)
		harvester.On("Harvest", ctx, since).Return("\nCommit aaa - 2026-08-21T09:00:00Z\nFile: a.go\n+uno", nil)
		analyzer.On("Analyze", ctx, mock.Anything).Return("veredicto", nil)
		notifier.On("Notify", ctx, mock.Anything, mock.Anything, mock.Anything).Return(domainerrors.NewDeliveryError(errors.New("connection refused")))

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)

		_, err := pipeline.Run(ctx)

		var deliveryErr *domainerrors.DeliveryError
		assert.True(t, errors.As(err, &deliveryErr))
		store.AssertNotCalled(t, "RecordScan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("harvest fallido no avanza el checkpoint", func(t *testing.T) {
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		mirror.On("Ensure", ctx).Return(false, nil)
		store.On("LastScan", ctx, mock.Anything, false).Return(since, nil)
		harvester.On("Harvest", ctx, since).Return("", domainerrors.NewHarvestError("log", errors.New("exit status 128")))

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)

		_, err := pipeline.Run(ctx)

		assert.Error(t, err)
		store.AssertNotCalled(t, "RecordScan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clone fallido aborta el run", func(t *testing.T) {
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		mirror.On("Ensure", ctx).Return(false, domainerrors.NewMirrorCloneError("https://example.com/repo.git", errors.New("exit status 128")))

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)

		_, err := pipeline.Run(ctx)

		var cloneErr *domainerrors.MirrorCloneError
		assert.True(t, errors.As(err, &cloneErr))
		store.AssertNotCalled(t, "LastScan", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "RecordScan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pull fallido es recuperable: el run sigue con el mirror viejo", func(t *testing.T) {
		store := new(MockCheckpointStore)
		mirror := new(MockRepositoryMirror)
		harvester := new(MockChangeHarvester)
		analyzer := new(MockAnalysisService)
		notifier := new(MockNotifier)

		var logs bytes.Buffer
		warnCtx := logger.WithLogger(context.Background(), slog.New(logger.NewPrettyHandler(&logs, nil)))

		mirror.On("Ensure", warnCtx).Return(false, domainerrors.NewMirrorUpdateError(errors.New("network down")))
		store.On("LastScan", warnCtx, mock.Anything, false).Return(since, nil)
		harvester.On("Harvest", warnCtx, since).Return(models.NoChanges, nil)
		store.On("RecordScan", warnCtx, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil)

		pipeline := newTestPipeline(t, store, mirror, harvester, analyzer, notifier)

		result, err := pipeline.Run(warnCtx)

		assert.NoError(t, err)
		assert.True(t, result.NoChanges)
		// El pull fallido se reporta como warning, no corta el run
		assert.Contains(t, logs.String(), "[WARN]")
		assert.Contains(t, logs.String(), "Could not update the mirror")
	})
}
