package lms

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-lms/lms/lms/common"
)

// TestPrivateKeyExhaustion fast-forwards q_next_usable_key to the last
// usable leaf directly rather than signing LEAF_COUNT times (which would
// make the test prohibitively slow); Sign's bounds check doesn't
// distinguish q == 0 from q == LeafCount-1, so this still exercises the
// real boundary.
func TestPrivateKeyExhaustion(t *testing.T) {
	seed, err := hex.DecodeString("558b8966c48ae9cb898b423c83443aae014a72f1b1ab5cc85cf1d892903b5439")
	assert.NoError(t, err)
	idBytes, err := hex.DecodeString("d08fabd4a2091ff0a8cb4ed834e74534")
	assert.NoError(t, err)

	priv, err := NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, common.ID(idBytes), seed)
	assert.NoError(t, err)

	priv.q = common.LeafCount - 1

	_, err = priv.Sign([]byte("last one"), nil)
	assert.NoError(t, err)
	assert.Equal(t, uint32(common.LeafCount), priv.Q())

	_, err = priv.Sign([]byte("one too many"), nil)
	assert.True(t, common.IsKind(err, common.OutOfPrivateKeys))
}
