package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/status"
	"github.com/smilemakc/workflow-engine/internal/template"
)

// HTTPExecutor implements HTTP_REQUEST. Grounded on
// backend/pkg/executor/builtin/http.go (request construction, content-type
// sniffing), output schema adapted to httpResponse (spec Open Question (c)).
type HTTPExecutor struct {
	Base
	client *http.Client
}

// NewHTTP builds an HTTP_REQUEST executor using client, or a default
// client with a sane timeout if client is nil.
func NewHTTP(client *http.Client) Executor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPExecutor{Base: Base{Kind: domain.KindHTTPRequest}, client: client}
}

func (e *HTTPExecutor) Execute(ctx context.Context, ec Context) (domain.RunContext, error) {
	ec.Publish.Publish(ec.NodeID, status.StatusLoading)

	variableName := ec.NodeConfig["variableName"]
	varName, _ := variableName.(string)
	if varName == "" || !domain.ValidVariableName(varName) {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewConfigurationError(ec.NodeID, "http_request: variableName must match [A-Za-z_$][A-Za-z0-9_$]*")
	}

	resolved := template.ResolveConfig(ec.RunContext, ec.NodeConfig)

	url, err := e.RequireString(ec.NodeID, resolved, "url")
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, err
	}
	method := strings.ToUpper(e.OptString(resolved, "method", "GET"))
	if !validMethod(method) {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewConfigurationError(ec.NodeID, "http_request: method must be one of GET, POST, PUT, PATCH, DELETE")
	}

	result, err := ec.Step.Run(ctx, "http-request:"+ec.NodeID, func(ctx context.Context) (any, error) {
		return e.doRequest(ctx, method, url, resolved["body"], e.OptMap(resolved, "headers"))
	})
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewExternalIOError("http_request", err, false)
	}

	out := ec.RunContext.With(varName, map[string]any{"httpResponse": result})
	ec.Publish.Publish(ec.NodeID, status.StatusSuccess)
	return out, nil
}

func validMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (e *HTTPExecutor) doRequest(ctx context.Context, method, url string, body any, headers map[string]any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			encoded, err := json.Marshal(b)
			if err != nil {
				return nil, err
			}
			reader = bytes.NewReader(encoded)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		if _, isString := body.(string); !isString {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	for k, v := range headers {
		if s, ok := v.(string); ok {
			req.Header.Set(k, s)
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data any
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if jsonErr := json.Unmarshal(raw, &data); jsonErr != nil {
			data = string(raw)
		}
	} else {
		data = string(raw)
	}

	return map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
		"data":       data,
	}, nil
}
