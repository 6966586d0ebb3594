package assistant

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type Kind int

const (
	KindMissingCredentials Kind = iota
	KindNetwork
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredentials:
		return "missing credentials"
	case KindNetwork:
		return "network"
	case KindProvider:
		return "provider"
	}
	return "unknown"
}

// MissingCredentialsMessage is returned, never raised, when no API key is configured.
const MissingCredentialsMessage = "Please set the 'GROQ_API_KEY' environment variable. You can get one from console.groq.com."

// ServiceError is any failure to obtain a reply from the language model.
type ServiceError struct {
	Kind Kind
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return "assistant: " + e.Kind.String()
	}
	return fmt.Sprintf("assistant: %s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// UserMessage is the inline text shown in place of a reply.
func (e *ServiceError) UserMessage() string {
	switch e.Kind {
	case KindMissingCredentials:
		return MissingCredentialsMessage
	case KindNetwork:
		return "I'm sorry, I'm having trouble connecting to the AI right now. Please check your internet connection and try again."
	}
	return fmt.Sprintf("I'm sorry, the AI service returned an error (%v). Please try again; if it persists, check that your 'GROQ_API_KEY' is correct.", e.Err)
}

// classify sorts a client error into provider-side and transport failures.
func classify(err error) *ServiceError {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
		return &ServiceError{Kind: KindProvider, Err: err}
	}
	return &ServiceError{Kind: KindNetwork, Err: err}
}
