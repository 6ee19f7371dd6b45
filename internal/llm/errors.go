package llm

import (
	"errors"
	"fmt"
)

var ErrEmptyResponse = errors.New("LLM response was empty")

type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}

type ErrMissingAPIKey struct {
	Env string
}

func (e ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("Missing %s environment variable.", e.Env)
}
