package imagen_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/taleweaver/internal/generator/imagen"
)

func newClient(t *testing.T, h http.HandlerFunc) *imagen.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := imagen.New(context.Background(), "key", srv.URL, "", time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestGenerateImage_ReturnsDataURL(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+imagen.DefaultModel+":predict"), r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		inst := body["instances"].([]any)[0].(map[string]any)
		assert.Equal(t, "a castle", inst["prompt"])
		params := body["parameters"].(map[string]any)
		assert.Equal(t, "16:9", params["aspectRatio"])
		assert.EqualValues(t, 1, params["sampleCount"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"QUJD","mimeType":"image/png"}]}`))
	})
	url, err := c.GenerateImage(context.Background(), "a castle")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QUJD", url)
}

func TestGenerateImage_NoPredictions(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[]}`))
	})
	_, err := c.GenerateImage(context.Background(), "x")
	assert.ErrorIs(t, err, imagen.ErrNoImage)
}

func TestGenerateImage_APIError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})
	_, err := c.GenerateImage(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := imagen.New(context.Background(), "", "", "", time.Second, zaptest.NewLogger(t))
	assert.Error(t, err)
}
