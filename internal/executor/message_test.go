package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/durablestep"
)

func TestSlackExecutor_PostsTextPayload(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ex := NewSlack(srv.Client())
	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())
	pub := &recordingPub{}

	out, err := ex.Execute(context.Background(), Context{
		NodeConfig: map[string]any{"webhookUrl": srv.URL, "message": "hello", "variableName": "m"},
		NodeID:     "n1",
		RunContext: domain.RunContext{},
		Step:       durablestep.NewStep(runtime, "run1"),
		Publish:    pub,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", captured["text"])
	assert.Equal(t, "hello", out["m"].(map[string]any)["messageContent"])
}

func TestDiscordExecutor_PostsContentPayload(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ex := NewDiscord(srv.Client())
	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())

	_, err := ex.Execute(context.Background(), Context{
		NodeConfig: map[string]any{"webhookUrl": srv.URL, "message": "hi there", "variableName": "m"},
		NodeID:     "n1",
		RunContext: domain.RunContext{},
		Step:       durablestep.NewStep(runtime, "run1"),
		Publish:    noopPublisher{},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", captured["content"])
}

func TestMessageExecutor_WebhookFailureSurfacesAsExternalIOError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ex := NewDiscord(srv.Client())
	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())
	pub := &recordingPub{}

	_, err := ex.Execute(context.Background(), Context{
		NodeConfig: map[string]any{"webhookUrl": srv.URL, "message": "hi", "variableName": "m"},
		NodeID:     "n1",
		RunContext: domain.RunContext{},
		Step:       durablestep.NewStep(runtime, "run1"),
		Publish:    pub,
	})
	require.Error(t, err)
	var ioErr *domain.ExternalIOError
	require.ErrorAs(t, err, &ioErr)
}
