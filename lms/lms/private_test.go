package lms_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-lms/lms/lms/common"
	"github.com/go-lms/lms/lms/lms"
	"github.com/go-lms/lms/lms/statestore"
)

func fixedSeedAndID(t *testing.T) ([]byte, common.ID) {
	seed, err := hex.DecodeString("558b8966c48ae9cb898b423c83443aae014a72f1b1ab5cc85cf1d892903b5439")
	assert.NoError(t, err)
	idBytes, err := hex.DecodeString("d08fabd4a2091ff0a8cb4ed834e74534")
	assert.NoError(t, err)
	return seed, common.ID(idBytes)
}

func TestPublicKeyDeterministic(t *testing.T) {
	seed, id := fixedSeedAndID(t)

	priv1, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)
	priv2, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)

	pub1 := priv1.Public()
	pub2 := priv2.Public()

	assert.Equal(t, pub1.Key(), pub2.Key())
	assert.Equal(t, id, pub1.ID())
}

func TestSignThenVerify(t *testing.T) {
	seed, id := fixedSeedAndID(t)
	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)

	msg := []byte("The powers not delegated to the United States by the Constitution.")

	sig, err := priv.Sign(msg, nil)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), sig.Q())
	assert.Equal(t, uint32(1), priv.Q())

	pub := priv.Public()
	assert.True(t, pub.Verify(msg, sig))

	wrongMsg := append([]byte{}, msg...)
	wrongMsg[0] ^= 1
	assert.False(t, pub.Verify(wrongMsg, sig))
}

func TestExportImportPublicKeyRoundTrip(t *testing.T) {
	seed, id := fixedSeedAndID(t)
	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)
	pub := priv.Public()

	exported := pub.ExportPublicKey()
	assert.Len(t, exported, int(common.PublicKeyLen))

	reimported, err := lms.ImportPublicKey(exported)
	assert.NoError(t, err)
	assert.Equal(t, pub.Key(), reimported.Key())
	assert.Equal(t, pub.ID(), reimported.ID())
}

func TestImportPublicKeyTooShort(t *testing.T) {
	_, err := lms.ImportPublicKey(make([]byte, 55))
	assert.True(t, common.IsKind(err, common.BufferTooSmall))
}

func TestImportPublicKeyWrongLmsType(t *testing.T) {
	_, id := fixedSeedAndID(t)
	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, make([]byte, common.M))
	assert.NoError(t, err)
	pub := priv.Public()
	b := pub.ExportPublicKey()

	// Tamper the lms_type field to the H5 variant (0x00000005).
	b[3] = 0x05
	_, err = lms.ImportPublicKey(b)
	assert.True(t, common.IsKind(err, common.BadInput))
}

func TestSignatureBitFlipRejected(t *testing.T) {
	seed, id := fixedSeedAndID(t)
	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)
	msg := []byte("flip a bit, any bit")

	sig, err := priv.Sign(msg, nil)
	assert.NoError(t, err)

	sigBytes, err := sig.ToBytes()
	assert.NoError(t, err)

	sigBytes[len(sigBytes)-1] ^= 1
	tampered, err := lms.SignatureFromBytes(sigBytes)
	assert.NoError(t, err)

	pub := priv.Public()
	assert.False(t, pub.Verify(msg, tampered))
}

func TestSignatureTamperedEmbeddedOtsType(t *testing.T) {
	seed, id := fixedSeedAndID(t)
	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)
	msg := []byte("tamper the embedded ots_type")

	sig, err := priv.Sign(msg, nil)
	assert.NoError(t, err)

	sigBytes, err := sig.ToBytes()
	assert.NoError(t, err)

	// Bytes 4-7 are the embedded OTS typecode (LMOTS_SHA256_N32_W8 = 4);
	// retarget it at the W4 registry entry (3).
	sigBytes[7] = 0x03
	tampered, err := lms.SignatureFromBytes(sigBytes)
	assert.NoError(t, err, "a tampered embedded typecode must decode, not fail, so Verify can reject it")

	pub := priv.Public()
	assert.False(t, pub.Verify(msg, tampered))
}

func TestSignatureFromBytesWrongLength(t *testing.T) {
	for _, n := range []int{0, 1, 100, 1451, 1453} {
		_, err := lms.SignatureFromBytes(make([]byte, n))
		assert.True(t, common.IsKind(err, common.BadInput), "length %d should be rejected as BadInput", n)
	}
}

func TestQOutOfRangeRejected(t *testing.T) {
	seed, id := fixedSeedAndID(t)
	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)
	msg := []byte("q out of range")

	sig, err := priv.Sign(msg, nil)
	assert.NoError(t, err)

	sigBytes, err := sig.ToBytes()
	assert.NoError(t, err)

	var tooLarge [4]byte
	tooLarge[0] = 0xff // q = 0xff000000, far beyond LEAF_COUNT
	copy(sigBytes[0:4], tooLarge[:])
	tampered, err := lms.SignatureFromBytes(sigBytes)
	assert.NoError(t, err)

	pub := priv.Public()
	assert.False(t, pub.Verify(msg, tampered))
}

func TestPrivateKeyToBytesRoundTrip(t *testing.T) {
	seed, id := fixedSeedAndID(t)
	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)

	_, err = priv.Sign([]byte("advance the counter"), nil)
	assert.NoError(t, err)

	serialized := priv.ToBytes()
	restored, err := lms.PrivateKeyContextFromBytes(serialized)
	assert.NoError(t, err)
	assert.Equal(t, priv.Q(), restored.Q())

	origPub := priv.Public()
	restoredPub := restored.Public()
	assert.Equal(t, origPub.Key(), restoredPub.Key())
}

func TestWithCounterStoreRecoversPersistedCounter(t *testing.T) {
	seed, id := fixedSeedAndID(t)
	store := statestore.NewMemCounterStore()

	priv, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)
	assert.NoError(t, priv.WithCounterStore(store))

	_, err = priv.Sign([]byte("first"), nil)
	assert.NoError(t, err)
	_, err = priv.Sign([]byte("second"), nil)
	assert.NoError(t, err)
	assert.Equal(t, uint32(2), priv.Q())

	// Simulate a process restart: a fresh context over the same seed,
	// rejoined to the same store, must never re-issue q=0 or q=1.
	restarted, err := lms.NewPrivateKeyFromSeed(common.LMS_SHA256_M32_H10, common.LMOTS_SHA256_N32_W8, id, seed)
	assert.NoError(t, err)
	assert.NoError(t, restarted.WithCounterStore(store))
	assert.Equal(t, uint32(2), restarted.Q())
}
