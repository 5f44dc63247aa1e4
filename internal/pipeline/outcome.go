package pipeline

import (
	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
	"github.com/ironsheep/image-edit-mcp/internal/batch"
)

// Kind classifies an Outcome.
type Kind int

const (
	Success Kind = iota
	ValidationFailure
	ExecutionFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ValidationFailure:
		return "validation_failure"
	default:
		return "execution_failure"
	}
}

// Outcome is the typed result of one request. Err is set for the two
// failure kinds only.
type Outcome struct {
	Kind     Kind
	Message  string
	Data     map[string]any
	Results  []batch.ItemResult
	Metadata map[string]any
	Err      error
	CacheHit bool
}

// Envelope is the JSON value returned to the caller.
type Envelope struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message,omitempty"`
	Data     map[string]any     `json:"data,omitempty"`
	Results  []batch.ItemResult `json:"results,omitempty"`
	Metadata map[string]any     `json:"metadata,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Envelope converts o to its wire form.
func (o Outcome) Envelope() Envelope {
	if o.Kind != Success {
		msg := "unknown error"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		return Envelope{Error: msg}
	}
	return Envelope{
		Success:  true,
		Message:  o.Message,
		Data:     o.Data,
		Results:  o.Results,
		Metadata: o.Metadata,
	}
}

func failure(err error) Outcome {
	kind := ValidationFailure
	if apperrors.IsExecution(err) {
		kind = ExecutionFailure
	}
	return Outcome{Kind: kind, Err: err}
}
