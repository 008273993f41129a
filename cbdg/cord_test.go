package cbdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCord_AppendPrepend(t *testing.T) {
	c := newCord("CGT")
	c.append("ACGT")
	c.prepend("TT")
	assert.Equal(t, "TTCGTACGT", c.String())
	assert.Equal(t, len("TTCGTACGT"), c.Len())
}

func TestCord_Clone_IsIndependent(t *testing.T) {
	c := newCord("AAA")
	clone := c.clone()
	c.append("CCC")
	assert.Equal(t, "AAA", clone.String())
	assert.Equal(t, "AAACCC", c.String())
}
