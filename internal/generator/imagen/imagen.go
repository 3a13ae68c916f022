// Package imagen generates illustrations with the Imagen models of the Gemini API.
package imagen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	// DefaultModel is used when no image model is configured.
	DefaultModel = "imagen-4.0-generate-001"

	aspectRatio = "16:9"
	mimeType    = "image/png"
)

// ErrNoImage is returned when the response carries no image bytes.
var ErrNoImage = errors.New("imagen: no image returned")

// Client renders prompts with one image model.
type Client struct {
	models *genai.Models
	model  string
	logger *zap.Logger
}

// New builds a Client. An empty baseURL keeps the SDK's endpoint and an
// empty model falls back to DefaultModel.
//
// Precondition: apiKey must be non-empty; logger must be non-nil.
func New(ctx context.Context, apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("imagen: api key must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating imagen client: %w", err)
	}
	return &Client{models: client.Models, model: model, logger: logger}, nil
}

// GenerateImage renders prompt and returns a base64 data URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
		OutputMIMEType: mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("imagen request: %w", err)
	}
	c.logger.Debug("imagen generate",
		zap.String("model", c.model),
		zap.Int("images", len(resp.GeneratedImages)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if len(resp.GeneratedImages) == 0 {
		return "", ErrNoImage
	}
	img := resp.GeneratedImages[0].Image
	if img == nil || len(img.ImageBytes) == 0 {
		if reason := resp.GeneratedImages[0].RAIFilteredReason; reason != "" {
			return "", fmt.Errorf("%w: filtered: %s", ErrNoImage, reason)
		}
		return "", ErrNoImage
	}
	mt := img.MIMEType
	if mt == "" {
		mt = mimeType
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(img.ImageBytes), nil
}
