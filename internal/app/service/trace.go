package service

import (
	"time"

	"github.com/rs/zerolog/log"
)

func step(label string) func() {
	start := time.Now()
	return func() { log.Debug().Str("step", label).Dur("took", time.Since(start)).Msg("trace") }
}
