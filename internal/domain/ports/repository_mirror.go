package ports

import "context"

// RepositoryMirror asegura una copia local actualizada del branch objetivo.
type RepositoryMirror interface {
	// Ensure clona el repositorio si no existe o lo actualiza si ya está.
	// Devuelve true solo cuando este llamado hizo el clone inicial.
	// Un pull fallido devuelve un *errors.MirrorUpdateError: el caller
	// puede seguir con el mirror viejo. Un clone fallido es fatal.
	Ensure(ctx context.Context) (fresh bool, err error)
}
