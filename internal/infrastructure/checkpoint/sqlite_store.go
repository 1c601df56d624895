package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/ports"
	_ "modernc.org/sqlite"
)

var _ ports.CheckpointStore = (*SQLiteStore)(nil)

// SQLiteStore es el log append-only de scans. Una tabla por identidad
// repo+branch, filas (id AUTOINCREMENT, scan_date RFC 3339); el último
// scan es la fila con el id más alto. Las filas nunca se modifican.
type SQLiteStore struct {
	db       *sql.DB
	lookback time.Duration
	now      func() time.Time
}

// NewSQLiteStore abre (o crea) la base en dbFile. El directorio padre se
// crea con permisos restringidos si no existe.
func NewSQLiteStore(dbFile string, lookback time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbFile); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("no se pudo crear el directorio de la base: %w", err)
		}
	}

	dsn := dbFile + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la base de checkpoints: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		lookback: lookback,
		now:      time.Now,
	}, nil
}

func (s *SQLiteStore) LastScan(ctx context.Context, id models.RepoIdentity, freshMirror bool) (time.Time, error) {
	// Un mirror recién clonado ignora cualquier fila previa: la ventana
	// inicial queda acotada al lookback en vez de recorrer toda la historia.
	if freshMirror {
		return s.now().Add(-s.lookback), nil
	}

	if err := s.ensureTable(ctx, id); err != nil {
		return time.Time{}, err
	}

	query := fmt.Sprintf(`SELECT id, scan_date FROM %q ORDER BY id DESC LIMIT 1`, id.TableName())

	var (
		row models.ScanCheckpoint
		raw string
	)
	err := s.db.QueryRowContext(ctx, query).Scan(&row.ID, &raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Primer run contra un mirror preexistente: historia completa.
		return time.Time{}, nil
	case err != nil:
		return time.Time{}, fmt.Errorf("no se pudo leer el último checkpoint: %w", err)
	}

	row.ScanDate, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("el checkpoint guardado no es un timestamp válido: %w", err)
	}
	return row.ScanDate, nil
}

func (s *SQLiteStore) RecordScan(ctx context.Context, id models.RepoIdentity, at time.Time) error {
	if err := s.ensureTable(ctx, id); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %q (scan_date) VALUES (?)`, id.TableName())
	if _, err := s.db.ExecContext(ctx, query, at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("no se pudo registrar el checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureTable(ctx context.Context, id models.RepoIdentity) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_date TEXT NOT NULL
		)`, id.TableName())

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("no se pudo crear la tabla de checkpoints: %w", err)
	}
	return nil
}
