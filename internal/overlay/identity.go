package overlay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	libp2phost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// persistedIdentity is the on-disk form of a node's libp2p key material.
type persistedIdentity struct {
	PrivKey []byte `json:"priv_key"`
	PeerID  string `json:"peer_id"`
}

// PeerIdentity is this node's persistent libp2p identity: a stable peer ID backed by an
// Ed25519 key, loaded from disk across restarts so that peers recognize the node across
// crawl cycles rather than treating every restart as a new, untrusted peer.
type PeerIdentity struct {
	priv   crypto.PrivKey
	PeerID peer.ID
}

// LoadOrCreatePeerIdentity reads a persisted identity from path, or mints and persists a
// fresh Ed25519 identity if path does not yet exist.
func LoadOrCreatePeerIdentity(path string) (*PeerIdentity, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var stored persistedIdentity
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, fmt.Errorf("parse peer identity at %s: %w", path, err)
		}
		priv, err := crypto.UnmarshalPrivateKey(stored.PrivKey)
		if err != nil {
			return nil, fmt.Errorf("unmarshal peer private key: %w", err)
		}
		pid, err := peer.Decode(stored.PeerID)
		if err != nil {
			return nil, fmt.Errorf("decode peer id %q: %w", stored.PeerID, err)
		}
		return &PeerIdentity{priv: priv, PeerID: pid}, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read peer identity at %s: %w", path, err)
	}

	priv, _, err := crypto.GenerateEd25519Key(nil)
	if err != nil {
		return nil, fmt.Errorf("generate peer identity: %w", err)
	}
	pid, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("derive peer id: %w", err)
	}

	identity := &PeerIdentity{priv: priv, PeerID: pid}
	if err := identity.persist(path); err != nil {
		return nil, err
	}
	return identity, nil
}

func (id *PeerIdentity) persist(path string) error {
	privBytes, err := crypto.MarshalPrivateKey(id.priv)
	if err != nil {
		return fmt.Errorf("marshal peer private key: %w", err)
	}
	data, err := json.Marshal(persistedIdentity{PrivKey: privBytes, PeerID: id.PeerID.String()})
	if err != nil {
		return fmt.Errorf("marshal peer identity: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write peer identity to %s: %w", path, err)
	}
	return nil
}

// NewHost constructs a libp2p host bound to this identity, listening on each of listenAddrs
// (multiaddr strings such as "/ip4/0.0.0.0/tcp/4001").
func (id *PeerIdentity) NewHost(listenAddrs []string) (libp2phost.Host, error) {
	opts := []libp2p.Option{libp2p.Identity(id.priv)}
	if len(listenAddrs) > 0 {
		addrs := make([]ma.Multiaddr, 0, len(listenAddrs))
		for _, a := range listenAddrs {
			maddr, err := ma.NewMultiaddr(a)
			if err != nil {
				return nil, fmt.Errorf("parse listen address %q: %w", a, err)
			}
			addrs = append(addrs, maddr)
		}
		opts = append(opts, libp2p.ListenAddrs(addrs...))
	}

	host, err := libp2p.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("start libp2p host: %w", err)
	}
	return host, nil
}
