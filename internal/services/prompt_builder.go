package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Tomas-vilte/RepoVigia/internal/domain/models"
)

// ErrNoChanges señala el run no-op: no hay nada que analizar ni notificar,
// pero el checkpoint avanza igual.
var ErrNoChanges = errors.New("no hay cambios para analizar")

const (
	delimiterLength  = 64
	delimiterCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// PromptBuilder arma el prompt de análisis: instrucciones fijas, la
// descripción del proyecto y el digest cercado por un delimitador aleatorio
// de un solo uso. El delimitador es el contrato contra prompt injection:
// fresco en cada invocación y lo bastante largo como para que una colisión
// con texto arbitrario de diffs sea despreciable.
type PromptBuilder struct {
	projectDescription string
}

func NewPromptBuilder(projectDescription string) *PromptBuilder {
	return &PromptBuilder{projectDescription: projectDescription}
}

// Build devuelve ErrNoChanges si el digest es el sentinel del harvester.
func (b *PromptBuilder) Build(digest string) (string, error) {
	if digest == models.NoChanges {
		return "", ErrNoChanges
	}

	delimiter, err := generateDelimiter(delimiterLength)
	if err != nil {
		return "", fmt.Errorf("no se pudo generar el delimitador: %w", err)
	}
	secret := "--------------" + delimiter + "--------------"

	var prompt strings.Builder
	prompt.WriteString("I am going to show you some commits with the files modified in the project and the code added/modified.\n")
	fmt.Fprintf(&prompt, "The commits will be placed between the following secret tokens: %q.\n", secret)
	prompt.WriteString("You are going to analyze the code and see if there is a new feature added to the project.\n")
	fmt.Fprintf(&prompt, "Just for you to get some context, the project description is as follows: %s.\n", b.projectDescription)
	prompt.WriteString("\n")
	fmt.Fprintf(&prompt, "%s\n%s\n%s\n", secret, digest, secret)
	prompt.WriteString("\nI am interested to know new features added in these commits to understand if they need to be researched from a security perspective or have some potential vulnerabilities.\n")
	prompt.WriteString("Give me the response in HTML format.\n")

	return normalizeASCII(prompt.String()), nil
}

// generateDelimiter saca length caracteres de letras+dígitos de una fuente
// criptográfica, sin sesgo de módulo.
func generateDelimiter(length int) (string, error) {
	charsetSize := big.NewInt(int64(len(delimiterCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			return "", err
		}
		out[i] = delimiterCharset[n.Int64()]
	}
	return string(out), nil
}

// normalizeASCII descarta todo lo que quede fuera del ASCII imprimible.
// Se conservan \n y \t: el cercado depende de los saltos de línea.
// Es normalización defensiva contra artefactos de encoding en los diffs,
// no una frontera de seguridad.
func normalizeASCII(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || (r >= 0x20 && r < 0x7f) {
			out.WriteRune(r)
		}
	}
	return out.String()
}
