package executor

import (
	"context"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/status"
)

// triggerExecutor implements INITIAL and MANUAL_TRIGGER: both are pure
// entry points that pass the initial context through unchanged. Grounded
// on internal/trigger's manual-trigger idiom (a trigger node carries no
// behaviour of its own beyond marking where a run begins).
type triggerExecutor struct{}

// NewManualTrigger builds the executor for INITIAL/MANUAL_TRIGGER nodes.
func NewManualTrigger() Executor { return triggerExecutor{} }

func (triggerExecutor) Execute(_ context.Context, ec Context) (domain.RunContext, error) {
	ec.Publish.Publish(ec.NodeID, status.StatusLoading)
	ec.Publish.Publish(ec.NodeID, status.StatusSuccess)
	return ec.RunContext, nil
}

// webhookTrigger implements GOOGLE_FORM_TRIGGER and STRIPE_TRIGGER: it
// projects a webhook payload the caller seeded into the initial context
// (under the node's configured payloadKey, default "payload") into the
// fixed namespace the spec requires (spec §6: "convert their payloads
// into context namespaces googleForm.* and stripe.*"). Grounded on
// internal/trigger's HTTP-webhook trigger idiom; ingestion itself (the
// actual webhook HTTP endpoint) is an external collaborator per spec §1.
type webhookTrigger struct {
	Base
	namespace string
}

// NewGoogleFormTrigger builds the GOOGLE_FORM_TRIGGER executor.
func NewGoogleFormTrigger() Executor {
	return webhookTrigger{Base: Base{Kind: domain.KindGoogleFormTrigger}, namespace: "googleForm"}
}

// NewStripeTrigger builds the STRIPE_TRIGGER executor.
func NewStripeTrigger() Executor {
	return webhookTrigger{Base: Base{Kind: domain.KindStripeTrigger}, namespace: "stripe"}
}

func (t webhookTrigger) Execute(_ context.Context, ec Context) (domain.RunContext, error) {
	ec.Publish.Publish(ec.NodeID, status.StatusLoading)

	payloadKey := t.OptString(ec.NodeConfig, "payloadKey", "payload")
	out := ec.RunContext.Clone()
	if payload, ok := ec.RunContext[payloadKey]; ok {
		out[t.namespace] = payload
	} else if _, exists := out[t.namespace]; !exists {
		out[t.namespace] = map[string]any{}
	}

	ec.Publish.Publish(ec.NodeID, status.StatusSuccess)
	return out, nil
}
