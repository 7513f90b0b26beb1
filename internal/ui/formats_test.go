package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRegisters(t *testing.T) {
	assert.Equal(t, "none", FormatRegisters(nil))
	assert.Equal(t, "$0×3 $2×1 $9×2", FormatRegisters(map[int]int{9: 2, 0: 3, 2: 1}))
}
