// Package statestore implements the state-persistence collaborator of
// spec.md sections 5 and 6.4: a durable store for the monotonically
// advancing leaf counter q_next_usable_key. The scheme's security depends
// on this counter never regressing, so a signer should flush an advance to
// durable storage before releasing the signature bytes to its caller.
//
// This package is modelled on bwesterb/go-xmssmt's fsContainer, another
// stateful hash-based signature scheme with the identical crash-safety
// requirement on its signature sequence number, narrowed from a full
// private-key-plus-subtree-cache container down to a single counter.
package statestore

// CounterStore is the durability collaborator a PrivateKeyContext calls
// into during Sign.
type CounterStore interface {
	// Load returns the last persisted counter value for ctxID, or 0 if
	// nothing has been persisted yet.
	Load(ctxID string) (uint32, error)

	// Persist durably records q as the next usable key index for ctxID.
	// It must not return until the value is safe against a power loss.
	Persist(ctxID string, q uint32) error

	// Close releases any resources (file handles, locks) held by the store.
	Close() error
}
