// Package assets implements the actions behind the clean and builder tasks.
package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
)

// Builder produces one kind of artifact from the pipeline's sources.
type Builder interface {
	// Build runs one complete build. Progress lines are written to out.
	Build(ctx context.Context, out io.Writer) error
	// Sources returns the files whose changes make the build stale.
	Sources() Sources
}

// Sources scopes the files a builder reads.
type Sources struct {
	// Root is the absolute directory the glob is evaluated in.
	Root string
	// Glob is a doublestar pattern relative to Root.
	Glob string
}

// Pattern returns the absolute glob.
func (s Sources) Pattern() string {
	return filepath.Join(s.Root, s.Glob)
}

func progress(out io.Writer, format string, args ...any) {
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}

// formatBytes renders a size the way build summaries usually do.
func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMG"[exp])
}
