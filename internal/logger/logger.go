package logger

import (
	"go.uber.org/zap"

	"blogapi/internal/config"
)

// New returns a JSON production logger in production and a human-readable
// development logger everywhere else.
func New(environment string) (*zap.Logger, error) {
	if environment == config.EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
