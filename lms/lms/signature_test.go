package lms_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-lms/lms/lms/common"
	"github.com/go-lms/lms/lms/lms"
)

func TestSignatureFromBytesRejectsWrongLengths(t *testing.T) {
	for i := 0; i < 1000; i++ {
		b := make([]byte, i)
		_, err := lms.SignatureFromBytes(b)
		assert.Error(t, err)
	}
}

func TestSignatureToBytesFromBytesRoundTrip(t *testing.T) {
	seed, err := hex.DecodeString("558b8966c48ae9cb898b423c83443aae014a72f1b1ab5cc85cf1d892903b5439")
	assert.NoError(t, err)
	idBytes, err := hex.DecodeString("d08fabd4a2091ff0a8cb4ed834e74534")
	assert.NoError(t, err)
	id := common.ID(idBytes)

	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)

	sig, err := priv.Sign([]byte("round trip this signature"), nil)
	assert.NoError(t, err)

	b, err := sig.ToBytes()
	assert.NoError(t, err)
	assert.Len(t, b, 1452)

	sig2, err := lms.SignatureFromBytes(b)
	assert.NoError(t, err)

	b2, err := sig2.ToBytes()
	assert.NoError(t, err)
	assert.Equal(t, b, b2)
}
