package mailer

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

var htmlMarkers = []string{"<html>", "<body>", "<head>"}

// isHTML detecta si el cuerpo ya viene como documento HTML. En ese caso se
// manda tal cual, sin volver a renderizar markdown.
func isHTML(body string) bool {
	for _, marker := range htmlMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// htmlAlternative arma la parte HTML del mensaje: un cuerpo que ya es un
// documento HTML pasa sin tocar, el resto se renderiza como markdown.
func htmlAlternative(body string) (string, error) {
	if isHTML(body) {
		return body, nil
	}
	return renderHTML(body)
}

// renderHTML convierte markdown a HTML con tablas/footnotes de GFM y
// resaltado de código.
func renderHTML(body string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
