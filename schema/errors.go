package schema

import (
	"errors"
	"fmt"
)

var (
	// Tool-related errors
	ErrToolNotFound        = errors.New("tool not found")
	ErrToolAlreadyExists   = errors.New("tool already exists")
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// LLM-related errors
	ErrModelNotSupported = errors.New("model not supported")
	ErrModelAPIError     = errors.New("model API error")

	// Lookup-related errors
	ErrCompoundNotFound = errors.New("compound not found")

	// Common errors
	ErrInvalidInput = errors.New("invalid input")
	ErrTimeout      = errors.New("operation timeout")
)

type ToolError struct {
	ToolName string
	Op       string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s: %v", e.ToolName, e.Op, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolError(toolName, op string, err error) *ToolError {
	return &ToolError{
		ToolName: toolName,
		Op:       op,
		Err:      err,
	}
}

type AgentError struct {
	AgentName string
	Op        string
	Err       error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s: %s: %v", e.AgentName, e.Op, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

func NewAgentError(agentName, op string, err error) *AgentError {
	return &AgentError{
		AgentName: agentName,
		Op:        op,
		Err:       err,
	}
}

type WorkflowError struct {
	WorkflowName string
	Op           string
	Err          error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("workflow %s: %s: %v", e.WorkflowName, e.Op, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func NewWorkflowError(workflowName, op string, err error) *WorkflowError {
	return &WorkflowError{
		WorkflowName: workflowName,
		Op:           op,
		Err:          err,
	}
}

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s (value: %v): %s", e.Field, e.Value, e.Message)
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
