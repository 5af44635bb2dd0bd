package substratenode

import (
	"testing"

	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
)

func TestFirstTokenDecimalPresent(t *testing.T) {
	props := gsrpctypes.SystemPropertiesDetails{TokenDecimals: []int32{18, 6}}
	d, ok := firstTokenDecimal(props)
	assert.True(t, ok)
	assert.Equal(t, 18, d)
}

func TestFirstTokenDecimalAbsent(t *testing.T) {
	_, ok := firstTokenDecimal(gsrpctypes.SystemPropertiesDetails{})
	assert.False(t, ok)
}

func TestDecimalsForEncodingWidth(t *testing.T) {
	assert.Equal(t, fallbackDecimalsU128, decimalsForEncodingWidth(false))
	assert.Equal(t, fallbackDecimalsU256, decimalsForEncodingWidth(true))
}
