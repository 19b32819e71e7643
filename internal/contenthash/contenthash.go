// Package contenthash defines the opaque content identifier used throughout searchd and a
// couple of best-effort helpers for working with real content-addressed hashes when the
// storage network happens to speak IPFS-style CIDs.
package contenthash

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Hash is an opaque, non-empty string uniquely identifying content in the external storage
// network. The core treats it as opaque except where paths are rewritten (see the
// localindex package); it is never required to be a valid CID — test fixtures such as
// "Qm1" are not, and must still round-trip through every core component unchanged.
type Hash string

// String implements fmt.Stringer.
func (h Hash) String() string { return string(h) }

// FromBytes mints a CIDv1/sha2-256 content hash for data, for use by tests and fixture
// generators that want a realistic-looking Hash rather than a literal like "Qm1".
func FromBytes(data []byte) (Hash, error) {
	digest, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	c := cid.NewCidV1(cid.Raw, digest)
	return Hash(c.String()), nil
}

// LooksLikeCID reports whether h decodes as a valid CID. It is a diagnostic only: the core
// never rejects a Hash for failing this check.
func LooksLikeCID(h Hash) bool {
	_, err := cid.Decode(string(h))
	return err == nil
}
