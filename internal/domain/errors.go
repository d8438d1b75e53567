package domain

import (
	"errors"
	"fmt"
)

// ConfigurationError is a non-retriable error raised when a node's
// configuration is invalid or incomplete: a missing required field or a
// malformed variable name (spec §7). An unknown node kind is reported as
// UnknownNodeKindError instead.
type ConfigurationError struct {
	NodeID  string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("configuration error on node %s: %s", e.NodeID, e.Message)
	}
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// Retryable is always false for a ConfigurationError.
func (e *ConfigurationError) Retryable() bool { return false }

func NewConfigurationError(nodeID, message string) *ConfigurationError {
	return &ConfigurationError{NodeID: nodeID, Message: message}
}

// PlanCycleError is raised by the Planner when main-flow edges contain a
// cycle. It is non-retriable and occurs before the run starts, so no status
// events are ever emitted for it.
type PlanCycleError struct {
	WorkflowID string
	Nodes      []string
}

func (e *PlanCycleError) Error() string {
	return fmt.Sprintf("plan cycle detected in workflow %s among nodes %v", e.WorkflowID, e.Nodes)
}

func (e *PlanCycleError) Retryable() bool { return false }

// UnknownNodeKindError is raised by the Run Driver when a node's kind has
// no registered executor.
type UnknownNodeKindError struct {
	NodeID string
	Kind   NodeKind
}

func (e *UnknownNodeKindError) Error() string {
	return fmt.Sprintf("no executor registered for kind %q (node %s)", e.Kind, e.NodeID)
}

func (e *UnknownNodeKindError) Retryable() bool { return false }

// AgentMissingModelError is raised when an AI_AGENT node has no usable
// chat-model sub-node.
type AgentMissingModelError struct {
	NodeID string
	Reason string
}

func (e *AgentMissingModelError) Error() string {
	return fmt.Sprintf("agent node %s is missing a chat model: %s", e.NodeID, e.Reason)
}

func (e *AgentMissingModelError) Retryable() bool { return false }

// AgentMissingKeyError is raised when the agent's chat-model credential
// cannot be decrypted or resolved.
type AgentMissingKeyError struct {
	NodeID string
	Cause  error
}

func (e *AgentMissingKeyError) Error() string {
	return fmt.Sprintf("agent node %s has no usable API key", e.NodeID)
}

func (e *AgentMissingKeyError) Unwrap() error { return e.Cause }

func (e *AgentMissingKeyError) Retryable() bool { return false }

// TenancyError is raised when an operation crosses organization
// boundaries: a credential not owned by the caller's org, or a write to an
// entity (e.g. an order) belonging to another org. It is non-retriable and
// treated as a configuration error by callers that only distinguish
// retriable from non-retriable (spec §7).
type TenancyError struct {
	Message string
}

func (e *TenancyError) Error() string    { return e.Message }
func (e *TenancyError) Retryable() bool  { return false }

// DecryptionError is raised when a credential cannot be decrypted. Its
// message never includes cipher material; callers surface the credential
// as simply absent.
type DecryptionError struct {
	CredentialID string
	Cause        error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("credential %s could not be decrypted", e.CredentialID)
}

func (e *DecryptionError) Unwrap() error  { return e.Cause }
func (e *DecryptionError) Retryable() bool { return false }

// ExternalIOError wraps a failure from an HTTP call, LLM provider, or SMTP
// send. It carries the host's retry decision: by default retriable is
// false (spec default: zero retries), but a Durable Step Runtime's policy
// MAY choose to retry external I/O errors explicitly marked retriable.
type ExternalIOError struct {
	Op        string
	Cause     error
	retryable bool
}

func NewExternalIOError(op string, cause error, retryable bool) *ExternalIOError {
	return &ExternalIOError{Op: op, Cause: cause, retryable: retryable}
}

func (e *ExternalIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *ExternalIOError) Unwrap() error   { return e.Cause }
func (e *ExternalIOError) Retryable() bool { return e.retryable }

// retryableError is implemented by every error type above; the Run Driver
// uses it to decide whether a failure aborts the run outright or may be
// retried by the enclosing Durable Step Runtime.
type retryableError interface {
	Retryable() bool
}

// IsRetryable reports whether err, if it implements retryableError,
// declares itself retriable. Errors that do not implement the interface
// (e.g. a plain context deadline) are treated as non-retriable by default,
// matching the host's "default zero retries" policy.
func IsRetryable(err error) bool {
	var r retryableError
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
