package ports

import "context"

// AnalysisService manda el prompt al servicio de análisis y devuelve el veredicto.
type AnalysisService interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}
