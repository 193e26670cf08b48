package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	defer Use()

	Use()
	assert.Equal("line 12 'nop'", From("line %d '%v'", 12, "nop"))

	Use("xx-unknown", "en-GB")
	assert.Equal("plain text", From("plain text"))
	assert.Equal("0x1f", From("%#x", 31))
}
