package overlay_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-mesh/searchd/internal/overlay"
)

// TestPeerIdentityPersistsAcrossReload covers the persistent-identity round trip: a second
// load from the same path must yield the same peer ID as the first, rather than minting a
// fresh one, so that peers recognize the node across restarts.
func TestPeerIdentityPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	first, err := overlay.LoadOrCreatePeerIdentity(path)
	require.NoError(t, err)
	require.NotEmpty(t, first.PeerID.String())

	second, err := overlay.LoadOrCreatePeerIdentity(path)
	require.NoError(t, err)

	assert.Equal(t, first.PeerID, second.PeerID)
}

// TestDistinctPathsYieldDistinctIdentities ensures two fresh paths do not collide on the
// same peer ID.
func TestDistinctPathsYieldDistinctIdentities(t *testing.T) {
	dir := t.TempDir()

	a, err := overlay.LoadOrCreatePeerIdentity(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	b, err := overlay.LoadOrCreatePeerIdentity(filepath.Join(dir, "b.json"))
	require.NoError(t, err)

	assert.NotEqual(t, a.PeerID, b.PeerID)
}
