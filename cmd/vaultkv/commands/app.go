package commands

import (
	"github.com/systmms/vaultkv/internal/logging"
)

// App carries the settings shared by every command. The root command
// populates it from the persistent flags before any RunE executes.
type App struct {
	Env     string
	Debug   bool
	NoColor bool
	Logger  *logging.Logger
}
