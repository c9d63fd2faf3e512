// Package lms implements the LMS Merkle-tree composition layer.
//
// This file implements the private key context and signing logic (spec.md
// sections 4.4 and 3's private key context lifecycle).
package lms

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"

	"github.com/go-lms/lms/lms/common"
	"github.com/go-lms/lms/lms/ots"
	"github.com/go-lms/lms/lms/statestore"
)

// GeneratePrivateKey returns a PrivateKeyContext seeded by a cryptographically
// secure random number generator (generate_private_key, spec.md section
// 4.4.1, with the RNG draw for I folded in rather than left to a caller).
func GeneratePrivateKey(tc common.LmsAlgorithmType, otstc common.LmsOtsAlgorithmType) (PrivateKeyContext, error) {
	tc, err := tc.LmsType()
	if err != nil {
		return PrivateKeyContext{}, err
	}
	params, err := tc.LmsParams()
	if err != nil {
		return PrivateKeyContext{}, err
	}

	seed := make([]byte, params.M)
	if _, err := rand.Read(seed); err != nil {
		return PrivateKeyContext{}, common.WrapErrorf(common.InternalCryptoError, err, "GeneratePrivateKey(): failed to draw seed")
	}
	idBytes := make([]byte, common.ID_LEN)
	if _, err := rand.Read(idBytes); err != nil {
		return PrivateKeyContext{}, common.WrapErrorf(common.InternalCryptoError, err, "GeneratePrivateKey(): failed to draw I")
	}
	id := common.ID(idBytes)

	return NewPrivateKeyFromSeed(tc, otstc, id, seed)
}

// NewPrivateKeyFromSeed returns a new PrivateKeyContext, deriving every OTS
// leaf private key on demand from (I, q, seed) per RFC 8554 Appendix A
// rather than materialising and storing all LEAF_COUNT of them — the
// derivation is a pure function of its inputs, so this is behaviorally
// identical to the array-of-private-keys model of spec.md section 3 without
// the ~1 MiB it would cost to hold 1024 expanded private keys in memory.
func NewPrivateKeyFromSeed(tc common.LmsAlgorithmType, otstc common.LmsOtsAlgorithmType, id common.ID, seed []byte) (PrivateKeyContext, error) {
	tc, err := tc.LmsType()
	if err != nil {
		return PrivateKeyContext{}, err
	}
	otstc, err = otstc.LmsOtsType()
	if err != nil {
		return PrivateKeyContext{}, err
	}

	tree, err := buildPrivateTree(tc, otstc, id, seed)
	if err != nil {
		return PrivateKeyContext{}, err
	}

	return PrivateKeyContext{
		typecode: tc,
		otstype:  otstc,
		id:       id,
		seed:     seed,
		authtree: tree,
		q:        0,
		ctxID:    hex.EncodeToString(id[:]),
	}, nil
}

// buildPrivateTree derives every leaf's OTS public key from the seed and
// builds the full authentication tree over them (spec.md section 4.3).
func buildPrivateTree(tc common.LmsAlgorithmType, otstc common.LmsOtsAlgorithmType, id common.ID, seed []byte) (*merkleTree, error) {
	var pubKeys [common.LeafCount]ots.PublicKey
	for i := uint32(0); i < common.LeafCount; i++ {
		priv, err := ots.NewPrivateKeyFromSeed(otstc, i, id, seed)
		if err != nil {
			return nil, err
		}
		pub, err := priv.Public()
		if err != nil {
			return nil, err
		}
		pubKeys[i] = pub
	}
	return buildTree(id, pubKeys)
}

// WithCounterStore attaches store as priv's durability collaborator
// (spec.md section 6.4's persist_counter), recovering the last durably
// persisted counter value so a process restart never re-signs an already
// consumed leaf. It must be called before the first Sign.
func (priv *PrivateKeyContext) WithCounterStore(store statestore.CounterStore) error {
	q, err := store.Load(priv.ctxID)
	if err != nil {
		return common.WrapErrorf(common.StateIOError, err, "WithCounterStore(): failed to load persisted counter")
	}
	if q > priv.q {
		priv.q = q
	}
	priv.store = store
	return nil
}

// Public returns a PublicKeyContext that validates signatures for this
// private key (calculate_public_key, spec.md section 4.4.2).
func (priv *PrivateKeyContext) Public() PublicKeyContext {
	return PublicKeyContext{
		typecode: priv.typecode,
		otstype:  priv.otstype,
		id:       priv.id,
		root:     priv.authtree.root(),
	}
}

// Sign computes the LMS signature of msg, consuming one OTS leaf (sign,
// spec.md section 4.4.3). rng is optional; if nil, crypto/rand.Reader is
// used.
//
// Per spec.md section 4.4.3 step 2, q_next_usable_key is advanced and, if a
// CounterStore was attached via WithCounterStore, durably persisted before
// the OTS signature for the consumed leaf is even computed — not merely
// before the signature is returned. This matches section 7's reading that
// the leaf is consumed once its slot is claimed: an OTS/RNG failure after
// this point still leaves q advanced, rather than handing a caller a leaf
// that looks unconsumed but can never safely be retried. If persistence
// fails, the signature is discarded but the in-memory counter is left
// advanced: re-signing the leaf would be the actual security violation this
// spec exists to prevent.
func (priv *PrivateKeyContext) Sign(msg []byte, rng common.RandReader) (Signature, error) {
	if rng == nil {
		rng = rand.Reader
	}

	if priv.q >= common.LeafCount {
		return Signature{}, common.Errorf(common.OutOfPrivateKeys, "Sign(): q_next_usable_key has reached LEAF_COUNT")
	}

	q := priv.q
	priv.q = q + 1
	if priv.store != nil {
		if err := priv.store.Persist(priv.ctxID, priv.q); err != nil {
			return Signature{}, common.WrapErrorf(common.StateIOError, err, "Sign(): failed to durably persist advanced counter")
		}
	}

	otsPriv, err := ots.NewPrivateKeyFromSeed(priv.otstype, q, priv.id, priv.seed)
	if err != nil {
		return Signature{}, err
	}
	otsSig, err := otsPriv.Sign(msg, rng)
	if err != nil {
		return Signature{}, err
	}

	path := priv.authtree.authPath(q)

	return Signature{
		typecode: priv.typecode,
		q:        q,
		ots:      otsSig,
		path:     path,
	}, nil
}

// Q returns the current value of q_next_usable_key. Used by tests and by
// embedders inspecting remaining signing capacity.
func (priv *PrivateKeyContext) Q() uint32 {
	return priv.q
}

// Zeroize overwrites priv's seed-derived secret material with zero bytes
// (spec.md section 9: "both context destroyers must overwrite their
// storage with zero bytes before release"). priv must not be used
// afterwards.
func (priv *PrivateKeyContext) Zeroize() {
	for i := range priv.seed {
		priv.seed[i] = 0
	}
	priv.seed = nil
	priv.authtree = nil
	priv.q = 0
}

// ToBytes serializes the private key context into a byte string for
// storage. The current value of q_next_usable_key is included, so a
// restored context resumes exactly where it left off.
func (priv *PrivateKeyContext) ToBytes() []byte {
	var serialized []byte
	var u32 [4]byte

	typecode, _ := priv.typecode.LmsType()
	binary.BigEndian.PutUint32(u32[:], typecode.ToUint32())
	serialized = append(serialized, u32[:]...)

	otstype, _ := priv.otstype.LmsOtsType()
	binary.BigEndian.PutUint32(u32[:], otstype.ToUint32())
	serialized = append(serialized, u32[:]...)

	binary.BigEndian.PutUint32(u32[:], priv.q)
	serialized = append(serialized, u32[:]...)

	serialized = append(serialized, priv.id[:]...)
	serialized = append(serialized, priv.seed...)

	return serialized
}

// PrivateKeyContextFromBytes returns a PrivateKeyContext represented by b,
// the inverse of ToBytes. The tree is rebuilt from the recovered seed
// rather than stored, which keeps the serialized form at 60 bytes instead
// of carrying the roughly 64 KiB node array.
func PrivateKeyContextFromBytes(b []byte) (PrivateKeyContext, error) {
	if len(b) < 8 {
		return PrivateKeyContext{}, common.Errorf(common.BufferTooSmall, "PrivateKeyContextFromBytes(): input too short")
	}

	typecode, err := common.Uint32ToLmsType(binary.BigEndian.Uint32(b[0:4])).LmsType()
	if err != nil {
		return PrivateKeyContext{}, err
	}
	otstype, err := common.Uint32ToLmotsType(binary.BigEndian.Uint32(b[4:8])).LmsOtsType()
	if err != nil {
		return PrivateKeyContext{}, err
	}
	params, err := typecode.LmsParams()
	if err != nil {
		return PrivateKeyContext{}, err
	}

	want := int(common.QLen) + int(common.TypeLen) + int(common.OtsTypeLen) + int(common.ID_LEN) + int(params.M)
	if len(b) != want {
		return PrivateKeyContext{}, common.Errorf(common.BadInput, "PrivateKeyContextFromBytes(): unexpected input length")
	}

	q := binary.BigEndian.Uint32(b[8:12])
	id := common.ID(b[12:28])
	seed := make([]byte, params.M)
	copy(seed, b[28:])

	priv, err := NewPrivateKeyFromSeed(typecode, otstype, id, seed)
	if err != nil {
		return PrivateKeyContext{}, err
	}
	priv.q = q
	return priv, nil
}
