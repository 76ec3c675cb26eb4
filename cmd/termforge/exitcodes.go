package main

import (
	"errors"

	"github.com/hyperifyio/termforge/internal/pipeline"
	"github.com/hyperifyio/termforge/internal/store"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitError       = 1 // runtime failure
	ExitConfigError = 2 // invalid flags, env, or config file
	ExitConflict    = 3 // keyword already has its contents
	ExitNotFound    = 4 // keyword does not exist
)

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var cfgErr *configError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, pipeline.ErrContentsAlreadyExist):
		return ExitConflict
	case errors.Is(err, store.ErrKeywordNotFound):
		return ExitNotFound
	case errors.As(err, &cfgErr):
		return ExitConfigError
	}
	return ExitError
}
