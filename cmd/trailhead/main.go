// Command trailhead serves the authentication page,
// configured by environment variables and an optional .env file.
//
// Confer package ranger for the environment variables read.
package main

import (
	"os"

	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/ranger"
)

func main() {
	rng, err := ranger.New()
	if err != nil {
		logger.New().Error("failed configuring trailhead", &logger.LogContext{Error: err})
		os.Exit(1)
	}

	if err := rng.Guide(); err != nil {
		rng.EmitLogger().Error("trailhead stopped", &logger.LogContext{Error: err})
		os.Exit(1)
	}
}
