package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/status"
	"github.com/smilemakc/workflow-engine/internal/template"
)

// MessageExecutor implements DISCORD and SLACK: both post a templated
// message body to a configured webhook URL. Grounded on the teacher's
// messaging-bot idiom (backend/pkg/executor/builtin/telegram_*.go's
// config-validate-then-webhook-POST shape), adapted from Telegram's
// bot-token API to the two webhook-style targets spec §6 names.
type MessageExecutor struct {
	Base
	client *http.Client
}

// NewDiscord builds the DISCORD executor.
func NewDiscord(client *http.Client) Executor {
	return newMessageExecutor(domain.KindDiscord, client)
}

// NewSlack builds the SLACK executor.
func NewSlack(client *http.Client) Executor {
	return newMessageExecutor(domain.KindSlack, client)
}

func newMessageExecutor(kind domain.NodeKind, client *http.Client) Executor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &MessageExecutor{Base: Base{Kind: kind}, client: client}
}

func (e *MessageExecutor) Execute(ctx context.Context, ec Context) (domain.RunContext, error) {
	ec.Publish.Publish(ec.NodeID, status.StatusLoading)

	varName := e.OptString(ec.NodeConfig, "variableName", "")
	if varName == "" || !domain.ValidVariableName(varName) {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewConfigurationError(ec.NodeID, string(e.Kind)+": variableName must match [A-Za-z_$][A-Za-z0-9_$]*")
	}

	resolved := template.ResolveConfig(ec.RunContext, ec.NodeConfig)
	webhookURL, err := e.RequireString(ec.NodeID, resolved, "webhookUrl")
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, err
	}
	message, err := e.RequireString(ec.NodeID, resolved, "message")
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, err
	}

	_, err = ec.Step.Run(ctx, "message-post:"+ec.NodeID, func(ctx context.Context) (any, error) {
		return nil, e.post(ctx, webhookURL, e.payload(message))
	})
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewExternalIOError(string(e.Kind), err, false)
	}

	out := ec.RunContext.With(varName, map[string]any{"messageContent": message})
	ec.Publish.Publish(ec.NodeID, status.StatusSuccess)
	return out, nil
}

// payload shapes the webhook body for the executor's own kind: Discord
// expects {"content": ...}, Slack's incoming-webhook format expects
// {"text": ...}.
func (e *MessageExecutor) payload(message string) map[string]any {
	if e.Kind == domain.KindSlack {
		return map[string]any{"text": message}
	}
	return map[string]any{"content": message}
}

func (e *MessageExecutor) post(ctx context.Context, url string, body map[string]any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusCodeError{url: url, code: resp.StatusCode}
	}
	return nil
}

type statusCodeError struct {
	url  string
	code int
}

func (e *statusCodeError) Error() string {
	return fmt.Sprintf("webhook post to %s returned status %d", e.url, e.code)
}
