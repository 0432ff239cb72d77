package app

import "go.trai.ch/kiln/internal/core/ports"

// Components holds the resolved dependencies handed to the command layer.
type Components struct {
	App    *App
	Logger ports.Logger
}
