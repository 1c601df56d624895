package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Tomas-vilte/RepoVigia/internal/config"
	domainerrors "github.com/Tomas-vilte/RepoVigia/internal/domain/errors"
	"github.com/Tomas-vilte/RepoVigia/internal/domain/ports"
	"github.com/Tomas-vilte/RepoVigia/internal/infrastructure/httpclient"
	"github.com/Tomas-vilte/RepoVigia/internal/logger"
)

var _ ports.AnalysisService = (*Client)(nil)

// Client habla con el endpoint de análisis: un POST sincrónico por run,
// sin retries. Si falla, el checkpoint no avanza y el próximo run reintenta
// el mismo rango de commits.
type Client struct {
	baseURL  string
	endpoint string
	apiKey   string
	model    string
	client   httpclient.HTTPClient
}

func NewClient(cfg config.AnalysisConfig, client httpclient.HTTPClient) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   client,
	}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

// Analyze manda el prompt como único mensaje de usuario y devuelve el texto
// del primer choice de la respuesta.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error serializando el request de análisis: %w", err)
	}

	url := c.baseURL + c.endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("error creando el request de análisis: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error llamando al servicio de análisis: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn(ctx, "error cerrando el body de la respuesta", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", domainerrors.NewAnalysisError(resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error decodificando la respuesta del análisis: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("la respuesta del servicio de análisis no trajo choices")
	}

	return result.Choices[0].Message.Content, nil
}
