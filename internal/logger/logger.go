// Package logger builds the service's zap loggers.
package logger

import "go.uber.org/zap"

// NewNamed creates a named logger appropriate for the environment:
// JSON/production output everywhere except development, which gets the
// human-readable console encoder.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if appEnv == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
