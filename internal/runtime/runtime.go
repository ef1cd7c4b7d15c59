// Package runtime holds the process-wide state a generate/gags request
// shares: the icon-set cache, the icon-data caches, the GAGS config
// cache, the job registry, the sprite-JSON intern map, and the root
// directory used to resolve relative paths.
package runtime

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tilebound/iconforge/internal/digest"
	"github.com/tilebound/iconforge/internal/gags"
	"github.com/tilebound/iconforge/internal/iconcache"
	"github.com/tilebound/iconforge/internal/iconref"
	"github.com/tilebound/iconforge/internal/imagecache"
	"github.com/tilebound/iconforge/internal/jobs"
)

// State is the singleton bundle of process-wide caches and resources.
type State struct {
	Root string

	Icons  *iconcache.Cache
	Images *imagecache.Cache
	Jobs   *jobs.Registry
	Log    *zap.Logger

	gagsMu     sync.RWMutex
	gagsConfig map[string]*gags.Config

	internMu sync.RWMutex
	intern   map[string]map[string]iconref.IconRef

	busy int32 // count of in-flight generate/gags/headless calls
}

// New returns a State rooted at root, ready for use. A nil logger is
// replaced with zap.NewNop().
func New(root string, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		Root:       root,
		Icons:      iconcache.New(log),
		Images:     imagecache.New(),
		Jobs:       jobs.New(),
		Log:        log,
		gagsConfig: make(map[string]*gags.Config),
		intern:     make(map[string]map[string]iconref.IconRef),
	}
}

// ResolvePath joins a possibly-relative path against Root.
func (s *State) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// ResolveRef returns a copy of r with FilePath (and every nested
// BlendIcon operand's FilePath, recursively) resolved against Root, so
// the icon-set cache always keys on the same absolute path regardless of
// whether the caller's sprite JSON used a relative one.
// The returned value never aliases r's Transforms slice, so repeated
// resolution of an interned sprite map never races with a concurrent
// caller still holding the original.
func (s *State) ResolveRef(r iconref.IconRef) iconref.IconRef {
	r.FilePath = s.ResolvePath(r.FilePath)
	if len(r.Transforms) == 0 {
		return r
	}
	out := make([]iconref.Transform, len(r.Transforms))
	copy(out, r.Transforms)
	for i, t := range out {
		if t.Kind == iconref.KindBlendIcon && t.BlendIcon != nil {
			np := *t.BlendIcon
			np.Icon = s.ResolveRef(np.Icon)
			out[i].BlendIcon = &np
		}
	}
	r.Transforms = out
	return r
}

// PutGAGSConfig caches cfg under configPath.
func (s *State) PutGAGSConfig(configPath string, cfg *gags.Config) {
	s.gagsMu.Lock()
	defer s.gagsMu.Unlock()
	s.gagsConfig[configPath] = cfg
}

// GAGSConfig returns the cached config for configPath, or (nil, false).
func (s *State) GAGSConfig(configPath string) (*gags.Config, bool) {
	s.gagsMu.RLock()
	defer s.gagsMu.RUnlock()
	c, ok := s.gagsConfig[configPath]
	return c, ok
}

// InternSprites parses spritesJSON into a sprite map, caching the
// parse result keyed by the JSON's content digest so a later request
// carrying byte-identical sprite JSON (e.g. a cache-validity probe
// followed by the real generate call) avoids re-parsing it: a sprite map
// is interned into a shared deserialisation map keyed by its hash.
func (s *State) InternSprites(spritesJSON []byte) (map[string]iconref.IconRef, string, error) {
	hash := digest.Bytes(spritesJSON)

	s.internMu.RLock()
	if m, ok := s.intern[hash]; ok {
		s.internMu.RUnlock()
		return m, hash, nil
	}
	s.internMu.RUnlock()

	var sprites map[string]iconref.IconRef
	if err := json.Unmarshal(spritesJSON, &sprites); err != nil {
		return nil, hash, fmt.Errorf("runtime: sprite JSON: %w", err)
	}

	s.internMu.Lock()
	s.intern[hash] = sprites
	s.internMu.Unlock()
	return sprites, hash, nil
}

// BeginWork and EndWork bracket one generate/generate_headless/gags call,
// giving Cleanup a process-wide "cache in use" signal. This counter is
// what keeps Cleanup from evicting entries during a call: the transform
// tree does not call imagecache's per-key Acquire/Release.
func (s *State) BeginWork() { atomic.AddInt32(&s.busy, 1) }
func (s *State) EndWork()   { atomic.AddInt32(&s.busy, -1) }

// Cleanup implements the non-blocking "skip if busy" semantics: if any
// call is currently in flight, it is refused outright; otherwise it
// drops every cache entry not individually acquired.
func (s *State) Cleanup() (ran bool, fullRemoved, flatRemoved int) {
	if atomic.LoadInt32(&s.busy) > 0 {
		return false, 0, 0
	}
	fullRemoved, flatRemoved = s.Images.Cleanup()
	return true, fullRemoved, flatRemoved
}
