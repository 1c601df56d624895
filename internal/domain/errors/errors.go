package errors

import "fmt"

// ConfigError representa un error de configuración al arrancar
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error [%s]: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError crea un nuevo error de configuración
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// MirrorCloneError indica que el clone inicial falló. Fatal: sin mirror no hay scan.
// URL ya viene con la credencial redactada.
type MirrorCloneError struct {
	URL string
	Err error
}

func (e *MirrorCloneError) Error() string {
	return fmt.Sprintf("error al clonar el repositorio %s: %v", e.URL, e.Err)
}

func (e *MirrorCloneError) Unwrap() error {
	return e.Err
}

// NewMirrorCloneError crea un nuevo error de clone
func NewMirrorCloneError(url string, err error) *MirrorCloneError {
	return &MirrorCloneError{URL: url, Err: err}
}

// MirrorUpdateError indica que el pull falló. Recuperable: el run sigue
// con el mirror existente aunque esté desactualizado.
type MirrorUpdateError struct {
	Err error
}

func (e *MirrorUpdateError) Error() string {
	return fmt.Sprintf("error al actualizar el mirror: %v", e.Err)
}

func (e *MirrorUpdateError) Unwrap() error {
	return e.Err
}

// NewMirrorUpdateError crea un nuevo error de pull
func NewMirrorUpdateError(err error) *MirrorUpdateError {
	return &MirrorUpdateError{Err: err}
}

// HarvestError indica que falló la recolección de commits o diffs
type HarvestError struct {
	Stage string
	Err   error
}

func (e *HarvestError) Error() string {
	return fmt.Sprintf("error al recolectar commits (%s): %v", e.Stage, e.Err)
}

func (e *HarvestError) Unwrap() error {
	return e.Err
}

// NewHarvestError crea un nuevo error de harvest
func NewHarvestError(stage string, err error) *HarvestError {
	return &HarvestError{Stage: stage, Err: err}
}

// AnalysisError guarda el status y el body que devolvió el servicio de análisis.
// No hay retry automático: como el checkpoint no avanza, el mismo rango se
// reprocesa en la próxima invocación.
type AnalysisError struct {
	Status int
	Body   string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Body)
}

// NewAnalysisError crea un nuevo error del servicio de análisis
func NewAnalysisError(status int, body string) *AnalysisError {
	return &AnalysisError{Status: status, Body: body}
}

// DeliveryError indica que falló el envío del mail
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("error al enviar el mail: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NewDeliveryError crea un nuevo error de entrega
func NewDeliveryError(err error) *DeliveryError {
	return &DeliveryError{Err: err}
}
