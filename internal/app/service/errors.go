package service

import (
	"errors"
	"fmt"

	"github.com/jose-valero/rcon-arma-bot/internal/adapters/rcon"
)

var (
	ErrJobRunning           = errors.New("job already running")
	ErrJobNotRunning        = errors.New("job not running")
	ErrChannelNotConfigured = errors.New("target channel not configured")
	ErrChannelNotFound      = errors.New("target channel not found")
	ErrConfigMissing        = fmt.Errorf("guild not configured: %w", rcon.ErrConfigMissing)
	ErrValidation           = errors.New("validation failed")
)

// ValidationError lleva el texto que ve el usuario.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }
