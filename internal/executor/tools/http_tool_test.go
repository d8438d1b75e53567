package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequestTool_ReturnsStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))
	defer srv.Close()

	tool := HTTPRequest(srv.Client())
	result, err := tool.Execute(context.Background(), `{"url":"`+srv.URL+`","method":"POST","body":"x"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "HTTP 201")
	assert.Contains(t, result, "created")
}

func TestHTTPRequestTool_RejectsUnsupportedMethod(t *testing.T) {
	tool := HTTPRequest(nil)
	result, err := tool.Execute(context.Background(), `{"url":"http://example.com","method":"TRACE"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "Error:")
}

func TestHTTPRequestTool_RequiresURL(t *testing.T) {
	tool := HTTPRequest(nil)
	result, err := tool.Execute(context.Background(), `{"method":"GET"}`)
	require.NoError(t, err)
	assert.Equal(t, "Error: url is required", result)
}

func TestPassthrough_EchoesArguments(t *testing.T) {
	tool := Passthrough("custom_tool", "")
	result, err := tool.Execute(context.Background(), `{"input":"hello"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"input":"hello"}`, result)
	assert.Equal(t, "Echoes its input back unchanged.", tool.Def.Description)
}

func TestPassthrough_EmptyArgumentsYieldEmptyObject(t *testing.T) {
	tool := Passthrough("custom_tool", "desc")
	result, err := tool.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "{}", result)
}
