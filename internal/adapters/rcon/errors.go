package rcon

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var ErrConfigMissing = errors.New("rcon: server id or api token missing")

// APIError: status != 2xx o {success:false}.
type APIError struct {
	Status int
	Reason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rcon api status %d: %s", e.Status, e.Reason)
}

// Class agrupa fallos del upstream para logs.
type Class string

const (
	ClassNone    Class = ""
	ClassOffline Class = "offline"
	ClassAuth    Class = "auth"
	ClassTimeout Class = "timeout"
	ClassNetwork Class = "network"
	ClassAPI     Class = "api"
	ClassConfig  Class = "config"
)

func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, ErrConfigMissing) {
		return ClassConfig
	}
	var ae *APIError
	if errors.As(err, &ae) {
		switch ae.Status {
		case 500, 502, 503, 504:
			return ClassOffline
		case 401, 403:
			return ClassAuth
		}
		return ClassAPI
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ClassTimeout
	}
	return ClassNetwork
}

// Describe es el texto corto para el usuario.
func (c Class) Describe() string {
	switch c {
	case ClassOffline:
		return "server appears to be offline"
	case ClassAuth:
		return "API authentication failed, check the token"
	case ClassTimeout:
		return "request timed out"
	case ClassNetwork:
		return "network error reaching the RCON API"
	case ClassConfig:
		return "server is not configured"
	}
	return "RCON API error"
}
