package proof

import (
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// engineLog returns gnark's shared logger tagged for this package, so a
// program that configures gnark's logging configures ours too.
func engineLog() zerolog.Logger {
	l := logger.Logger()
	return l.With().Str("component", "proof").Logger()
}
