// Package detector inspects the environment to decide how progress output is colored.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode represents how progress output is colored.
type ColorMode int

const (
	// ModeAuto defers to environment detection.
	ModeAuto ColorMode = iota
	// ModeColor emits ANSI colors and styled icons.
	ModeColor
	// ModePlain emits plain text only.
	ModePlain
)

// String returns the flag spelling of the mode.
func (m ColorMode) String() string {
	switch m {
	case ModeColor:
		return "always"
	case ModePlain:
		return "never"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended color mode.
// NO_COLOR and a non-terminal stderr select plain output. CI logs usually
// render ANSI, so CI=true keeps colors even without a terminal.
func DetectEnvironment() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}

	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return ModeColor
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModePlain
	}
	return ModeColor
}

// ResolveMode applies the --color flag to the detected mode.
// userFlag should be one of: "auto", "always", "never", or empty.
func ResolveMode(autoDetected ColorMode, userFlag string) ColorMode {
	switch userFlag {
	case "always":
		return ModeColor
	case "never":
		return ModePlain
	default:
		if autoDetected == ModeAuto {
			return ModePlain
		}
		return autoDetected
	}
}

// Profile maps a resolved mode to a termenv color profile.
func Profile(mode ColorMode) termenv.Profile {
	if mode == ModeColor {
		return termenv.ANSI
	}
	return termenv.Ascii
}
