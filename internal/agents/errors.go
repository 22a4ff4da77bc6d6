package agents

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed set of agent-layer failure codes.
type ErrorCode string

const (
	CodeInvalidInput          ErrorCode = "INVALID_INPUT"
	CodeInitializationFailed  ErrorCode = "AGENT_INITIALIZATION_FAILED"
	CodeAgentNotFound         ErrorCode = "AGENT_NOT_FOUND"
	CodeLLMError              ErrorCode = "LLM_ERROR"
	CodeToolExecutionFailed   ErrorCode = "TOOL_EXECUTION_FAILED"
	CodeMaxIterationsExceeded ErrorCode = "MAX_ITERATIONS_EXCEEDED"
	CodeWorkflowError         ErrorCode = "WORKFLOW_ERROR"
)

// AgentError is a typed failure carrying the agent identifier and
// structured detail.
type AgentError struct {
	Code    ErrorCode
	AgentID string
	Message string
	Details map[string]interface{}
	Cause   error
}

func (e *AgentError) Error() string {
	if e.AgentID != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Code, e.AgentID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}

// NewAgentError constructs a typed agent failure.
func NewAgentError(code ErrorCode, agentID, message string) *AgentError {
	return &AgentError{Code: code, AgentID: agentID, Message: message}
}

// WithDetails attaches structured detail to the error.
func (e *AgentError) WithDetails(details map[string]interface{}) *AgentError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error.
func (e *AgentError) WithCause(cause error) *AgentError {
	e.Cause = cause
	return e
}

// CodeOf extracts the agent error code, or empty when err is not an
// AgentError.
func CodeOf(err error) ErrorCode {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
