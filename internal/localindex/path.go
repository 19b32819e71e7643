package localindex

import (
	"strings"

	"github.com/lattice-mesh/searchd/internal/contenthash"
	"github.com/lattice-mesh/searchd/internal/indextypes"
)

const maxPathDepth = 32

const dnsPinPrefix = "dns-pin-"

// IsDNSPinRoot reports whether label names a synthetic DNS-pin root rather than an ordinary
// crawled folder. It is a standalone predicate so a future resolver that mints dns-pin
// roots with a different marker (rather than this prefix convention) can be swapped in
// without touching BuildPath's traversal logic.
func IsDNSPinRoot(label string) bool {
	return strings.HasPrefix(label, dnsPinPrefix)
}

// rewriteDNSPinPath rewrites a path whose root label is a synthetic "dns-pin-{domain or
// domain/subpath}-{index}" marker into one rooted at the real domain, with any subpath
// components spliced in immediately after it. Non-dns-pin roots pass through unchanged.
func rewriteDNSPinPath(path []string) []string {
	if len(path) == 0 || !IsDNSPinRoot(path[0]) {
		return path
	}

	rest := strings.TrimPrefix(path[0], dnsPinPrefix)
	idx := strings.LastIndexByte(rest, '-')
	if idx < 0 {
		return path
	}
	rest = rest[:idx]

	domain, subpath, hasSubpath := strings.Cut(rest, "/")

	out := make([]string, 0, len(path)+1)
	out = append(out, domain)
	if hasSubpath {
		for _, part := range strings.Split(subpath, "/") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	out = append(out, path[1:]...)
	return out
}

// pathBranch is one root-to-node label sequence still awaiting its dns-pin rewrite or
// root-ContentHash prepend: labels in root-to-node order, plus the LocalCid of the root the
// sequence bottoms out at.
type pathBranch struct {
	labels []string
	root   indextypes.LocalCid
}

// BuildPath reconstructs every storage-network path to hash by walking the ancestor graph
// depth-first from hash up to each of its roots, branching at every node with more than one
// parent (content deduplication) so that every distinct ancestor chain is emitted as its own
// path. Traversal is bounded to maxPathDepth hops to guard against a pathological or
// cyclical ancestor graph; a branch that hits the bound is cut off and its frontier node is
// treated as a root. An empty edge label also terminates expansion through that ancestor,
// since it marks a synthetic root.
func (idx *LocalIndex) BuildPath(hash contenthash.Hash) [][]string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	lcid, ok := idx.cidToLcid[hash]
	if !ok {
		return nil
	}

	return idx.buildPathsLocked(lcid)
}

// buildPathsLocked enumerates every path to lcid and applies the dns-pin rewrite or the
// root-ContentHash prepend to each. Callers must hold idx.mu for reading.
func (idx *LocalIndex) buildPathsLocked(lcid indextypes.LocalCid) [][]string {
	branches := idx.ancestorBranches(lcid, 0)

	out := make([][]string, 0, len(branches))
	for _, b := range branches {
		if len(b.labels) > 0 && IsDNSPinRoot(b.labels[0]) {
			out = append(out, rewriteDNSPinPath(b.labels))
			continue
		}
		rootCid, ok := idx.lcidToCid[b.root]
		if !ok {
			out = append(out, b.labels)
			continue
		}
		path := make([]string, 0, len(b.labels)+1)
		path = append(path, string(rootCid))
		path = append(path, b.labels...)
		out = append(out, path)
	}
	return out
}

// ancestorBranches returns, for every distinct ancestor chain reachable from cur, the
// root-to-cur label sequence (in root-to-cur order, inclusive of the edge into cur) and the
// LocalCid of that chain's root.
func (idx *LocalIndex) ancestorBranches(cur indextypes.LocalCid, depth int) []pathBranch {
	parents := idx.ancestors[cur]
	if depth >= maxPathDepth || len(parents) == 0 {
		return []pathBranch{{root: cur}}
	}

	var out []pathBranch
	for parent, label := range parents {
		if label == "" {
			out = append(out, pathBranch{root: cur})
			continue
		}
		for _, sub := range idx.ancestorBranches(parent, depth+1) {
			labels := make([]string, 0, len(sub.labels)+1)
			labels = append(labels, sub.labels...)
			labels = append(labels, label)
			out = append(out, pathBranch{labels: labels, root: sub.root})
		}
	}
	if len(out) == 0 {
		out = []pathBranch{{root: cur}}
	}
	return out
}
