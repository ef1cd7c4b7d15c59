// Package transformtree implements the transform-tree optimiser: the
// engine that dedupes shared prefixes of transform chains across many
// sprites and evaluates each distinct prefix exactly once. It is the hot
// path of a generate request.
package transformtree

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tilebound/iconforge/internal/icondata"
	"github.com/tilebound/iconforge/internal/iconcache"
	"github.com/tilebound/iconforge/internal/imagecache"
	"github.com/tilebound/iconforge/internal/iconref"
	"github.com/tilebound/iconforge/internal/transform"
)

// maxDepth is the transform-chain depth ceiling; exceeding it is a fatal
// error for the offending bucket.
const maxDepth = 128

// Named pairs a caller-supplied sprite name with its IconRef, the unit of
// work a generate request fans out over.
type Named struct {
	Name string
	Ref  iconref.IconRef
}

// Resolved is one finished sprite: its name and the IconData produced by
// walking its full transform chain.
type Resolved struct {
	Name string
	Ref  iconref.IconRef
	Data *icondata.IconData
}

// Tree evaluates a batch of IconRefs against the icon-set and icon-data
// caches, sharing work across any sprites whose transform chains share a
// prefix.
type Tree struct {
	icons  *iconcache.Cache
	images *imagecache.Cache
	log    *zap.Logger
}

// New returns a Tree backed by an icon-set cache and an image cache.
func New(icons *iconcache.Cache, images *imagecache.Cache, log *zap.Logger) *Tree {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tree{icons: icons, images: images, log: log}
}

// Resolve partitions sprites by base icon and transform prefix and
// evaluates each bucket, returning one Resolved entry per input in the
// same order (or the first fatal error encountered by any bucket).
func (t *Tree) Resolve(sprites []Named) ([]Resolved, error) {
	t.prewarm(sprites)

	buckets := make(map[string][]Named)
	var order []string
	for _, s := range sprites {
		k := s.Ref.BaseKey()
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], s)
	}

	results := make(map[string]*icondata.IconData, len(sprites))
	var resMu sync.Mutex

	var eg errgroup.Group
	for _, k := range order {
		members := buckets[k]
		eg.Go(func() error {
			out, err := t.resolveBucket(members)
			if err != nil {
				return err
			}
			resMu.Lock()
			for name, d := range out {
				results[name] = d
			}
			resMu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	resolved := make([]Resolved, len(sprites))
	for i, s := range sprites {
		d, ok := results[resultKey(s)]
		if !ok {
			return nil, fmt.Errorf("transformtree: sprite %q: no result produced", s.Name)
		}
		resolved[i] = Resolved{Name: s.Name, Ref: s.Ref, Data: d}
	}
	return resolved, nil
}

// resultKey keys a sprite's result on its full transform-chain key
// (Ref.Key()) alone; sprites with identical refs share one result.
func resultKey(s Named) string {
	return s.Ref.Key()
}

// resolveBucket decodes one base-icon bucket's shared source image once,
// then walks every distinct transform prefix in the bucket, memoizing
// each intermediate result so sprites sharing a prefix reuse it.
func (t *Tree) resolveBucket(members []Named) (map[string]*icondata.IconData, error) {
	base := members[0].Ref.Base()

	baseData, err := t.decodeBase(base)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*icondata.IconData)
	if err := t.walk(baseData, members, 0, out); err != nil {
		return nil, err
	}
	return out, nil
}

// walk implements the depth-first shared-prefix recursion: emit any
// IconRefs finished at this depth, then partition the rest by their next
// transform and recurse.
func (t *Tree) walk(current *icondata.IconData, members []Named, depth int, out map[string]*icondata.IconData) error {
	if depth > maxDepth {
		return fmt.Errorf("transformtree: transform depth exceeded %d", maxDepth)
	}

	var remaining []Named
	for _, m := range members {
		if m.Ref.Depth() == depth {
			out[resultKey(m)] = current
		} else {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	partitions := make(map[string][]Named)
	var partOrder []string
	for _, m := range remaining {
		k := m.Ref.Transforms[depth].Key()
		if _, ok := partitions[k]; !ok {
			partOrder = append(partOrder, k)
		}
		partitions[k] = append(partitions[k], m)
	}

	var eg errgroup.Group
	var mu sync.Mutex
	merged := make(map[string]*icondata.IconData)
	for _, k := range partOrder {
		group := partitions[k]
		tr := group[0].Ref.Transforms[depth]
		eg.Go(func() error {
			cloned := current.Clone()
			next, err := transform.Apply(cloned, tr, t.resolveNested)
			if err != nil {
				return err
			}
			sub := make(map[string]*icondata.IconData)
			if err := t.walk(next, group, depth+1, sub); err != nil {
				return err
			}
			mu.Lock()
			for k, v := range sub {
				merged[k] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for k, v := range merged {
		out[k] = v
	}
	return nil
}

// decodeBase materialises the IconData for a bucket's base icon, via C5
// get-or-insert keyed on the base icon's own canonical key.
func (t *Tree) decodeBase(base iconref.IconRef) (*icondata.IconData, error) {
	key := base.Key()
	if d, ok := t.images.GetFull(key); ok {
		return d, nil
	}
	set, err := t.icons.Load(base.FilePath)
	if err != nil {
		return nil, err
	}
	st := set.ByName(base.StateName)
	if st == nil {
		return nil, fmt.Errorf("transformtree: state %q not found in %s", base.StateName, base.FilePath)
	}
	d, err := icondata.FromState(st, base.Dir, base.Frame)
	if err != nil {
		return nil, err
	}
	return t.images.PutFull(key, d), nil
}

// resolveNested resolves a BlendIcon operand's full transform chain,
// sharing the same icon-set/icon-data caches as top-level sprites.
func (t *Tree) resolveNested(ref iconref.IconRef) (*icondata.IconData, error) {
	key := ref.Key()
	if d, ok := t.images.GetFull(key); ok {
		return d, nil
	}
	resolved, err := t.Resolve([]Named{{Name: key, Ref: ref}})
	if err != nil {
		return nil, err
	}
	return t.images.PutFull(key, resolved[0].Data), nil
}

// prewarm forces every referenced path (including those nested inside
// BlendIcon transforms) through the icon-set cache before bucketing, so
// concurrent buckets sharing a source file collapse onto one decode.
func (t *Tree) prewarm(sprites []Named) {
	seen := make(map[string]bool)
	var paths []string
	for _, s := range sprites {
		collectPaths(s.Ref, seen, &paths)
	}

	var eg errgroup.Group
	for _, p := range paths {
		eg.Go(func() error {
			_, err := t.icons.Load(p)
			if err != nil {
				t.log.Warn("prewarm failed", zap.String("path", p), zap.Error(err))
			}
			return nil
		})
	}
	_ = eg.Wait()
}

func collectPaths(ref iconref.IconRef, seen map[string]bool, paths *[]string) {
	if !seen[ref.FilePath] {
		seen[ref.FilePath] = true
		*paths = append(*paths, ref.FilePath)
	}
	for _, nested := range ref.NestedIconRefs() {
		collectPaths(nested, seen, paths)
	}
}
