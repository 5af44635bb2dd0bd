package substratenode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCallNameTwoParts(t *testing.T) {
	assert.Equal(t, []string{"Balances", "transfer"}, splitCallName("Balances.transfer"))
}

func TestSplitCallNameNoSeparator(t *testing.T) {
	assert.Equal(t, []string{"opaque"}, splitCallName("opaque"))
}

func TestSplitCallNameSplitsOnFirstDotOnly(t *testing.T) {
	assert.Equal(t, []string{"A", "b.c"}, splitCallName("A.b.c"))
}
