package models

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// NoChanges es el sentinel que devuelve el harvester cuando no hay commits
// en el rango. El builder de prompts lo usa para cortocircuitar el run.
const NoChanges = "No changes."

type (
	// RepoIdentity identifica el par repositorio+branch sobre el que corre el scan.
	RepoIdentity struct {
		Name   string
		Branch string
	}

	// ScanCheckpoint es una fila del log append-only de scans.
	// El id solo se usa para ordenar: "último scan" = id más alto.
	ScanCheckpoint struct {
		ID       int64
		ScanDate time.Time
	}

	// FileDiff es el diff unificado de un archivo dentro de un commit.
	FileDiff struct {
		Path  string
		Patch string
	}

	// CommitRecord es un commit leído del mirror. Inmutable: solo vive
	// mientras se arma el digest, nunca se persiste.
	CommitRecord struct {
		Hash      string
		Timestamp time.Time
		Files     []FileDiff
	}

	// TokenCredential es la credencial de acceso al repositorio remoto.
	// Se pasa explícita al mirror; la URL autenticada se arma al momento
	// de usarla y no se guarda en ningún estado de larga vida.
	TokenCredential struct {
		Token string
	}
)

var tableSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]`)

// NewRepoIdentity deriva el nombre del repositorio del path de la URL,
// sin la extensión .git y con el escape de URL deshecho.
func NewRepoIdentity(repoURL, branch string) (RepoIdentity, error) {
	parsed, err := url.Parse(repoURL)
	if err != nil {
		return RepoIdentity{}, fmt.Errorf("no se pudo parsear la URL del repositorio: %w", err)
	}

	base := strings.TrimSuffix(path.Base(parsed.Path), ".git")
	name, err := url.PathUnescape(base)
	if err != nil {
		return RepoIdentity{}, fmt.Errorf("no se pudo decodificar el nombre del repositorio: %w", err)
	}
	if name == "" || name == "." || name == "/" {
		return RepoIdentity{}, fmt.Errorf("la URL del repositorio no tiene nombre: %s", repoURL)
	}

	return RepoIdentity{Name: name, Branch: branch}, nil
}

// TableName arma el nombre de la tabla de checkpoints para esta identidad.
// Cualquier caracter fuera de [A-Za-z0-9_] se reemplaza para poder citarlo en SQL.
func (r RepoIdentity) TableName() string {
	return tableSanitizer.ReplaceAllString(r.Name+r.Branch, "_")
}

// Subject es el asunto del mail de notificación.
func (r RepoIdentity) Subject() string {
	return fmt.Sprintf("%s (branch: %s) code update", r.Name, r.Branch)
}

func (c TokenCredential) IsZero() bool {
	return c.Token == ""
}

// InjectInto arma la URL de clone autenticada. Si no hay token devuelve la URL tal cual.
func (c TokenCredential) InjectInto(rawURL string) (string, error) {
	if c.IsZero() {
		return rawURL, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("no se pudo parsear la URL del repositorio: %w", err)
	}
	return fmt.Sprintf("https://%s@%s%s", c.Token, parsed.Host, parsed.Path), nil
}

// Redact borra el token de un texto antes de loguearlo (stderr de git lo incluye).
func (c TokenCredential) Redact(s string) string {
	if c.IsZero() {
		return s
	}
	return strings.ReplaceAll(s, c.Token, "****")
}
