package ports

import (
	"context"
	"time"

	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
)

// CheckpointStore persiste el timestamp del último scan por identidad.
// Es la única pieza con estado entre runs.
type CheckpointStore interface {
	// LastScan devuelve el "since" para el próximo harvest. Con un mirror
	// recién clonado devuelve now-lookback para acotar la ventana inicial;
	// si no hay filas devuelve el tiempo cero (scan de historia completa).
	LastScan(ctx context.Context, id models.RepoIdentity, freshMirror bool) (time.Time, error)

	// RecordScan agrega una fila nueva al log. Nunca falla en silencio:
	// un error de escritura es fatal para el run.
	RecordScan(ctx context.Context, id models.RepoIdentity, at time.Time) error

	Close() error
}
