package assets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/engine/assets"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", assets.FormatBytes(0))
	assert.Equal(t, "1023 B", assets.FormatBytes(1023))
	assert.Equal(t, "1.0 KiB", assets.FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", assets.FormatBytes(1536*1024))
}
