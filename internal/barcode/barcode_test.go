package barcode

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	code := Generate()

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)

	_, err := time.Parse("20060102", parts[0])
	assert.NoError(t, err)
	_, err = time.Parse("150405", parts[1])
	assert.NoError(t, err)
	assert.Len(t, parts[2], 8)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := Generate()
		assert.False(t, seen[code], "duplicate barcode %s", code)
		seen[code] = true
	}
}
