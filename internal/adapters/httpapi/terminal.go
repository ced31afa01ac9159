package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	terminalTimeout = 10 * time.Second
	maxOutput       = 1 << 20
)

// sólo comandos de lectura, sin argumentos
var allowedCommands = map[string]bool{
	"ls": true, "pwd": true, "ps": true, "df": true, "free": true,
	"uptime": true, "whoami": true, "date": true, "uname": true,
}

var errNotAllowed = errors.New("command not allowed")

type terminalRequest struct {
	Command string `json:"command"`
}

type terminalResult struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

// cappedBuffer descarta lo que pase de max.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.max - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

// runAllowed ejecuta un comando pelado de la allow-list.
func runAllowed(ctx context.Context, command string) (terminalResult, error) {
	name := strings.TrimSpace(command)
	if !allowedCommands[name] {
		return terminalResult{}, errNotAllowed
	}
	ctx, cancel := context.WithTimeout(ctx, terminalTimeout)
	defer cancel()

	out := &cappedBuffer{max: maxOutput}
	cmd := exec.CommandContext(ctx, name)
	cmd.Stdout = out
	cmd.Stderr = out
	err := cmd.Run()

	res := terminalResult{Output: out.buf.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case ctx.Err() != nil:
		return res, ctx.Err()
	default:
		return res, err
	}
	return res, nil
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	var req terminalRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := runAllowed(r.Context(), req.Command)
	switch {
	case errors.Is(err, errNotAllowed):
		log.Warn().Str("command", req.Command).Msg("terminal command rejected")
		writeError(w, http.StatusForbidden, "command not allowed")
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "command timed out")
		return
	case err != nil:
		log.Error().Err(err).Str("command", req.Command).Msg("terminal command failed")
		writeError(w, http.StatusInternalServerError, "command failed")
		return
	}
	log.Info().Str("command", req.Command).Int("exit", res.ExitCode).Msg("terminal command")
	writeJSON(w, http.StatusOK, res)
}
