// Package cachevalid implements the cache-validity checker: a cheap,
// side-effect-free comparison between a previous sprite-JSON hash plus a
// per-path digest manifest, and the current sprite JSON plus current
// on-disk state.
package cachevalid

import (
	"encoding/json"
	"fmt"

	"github.com/tilebound/iconforge/internal/digest"
	"github.com/tilebound/iconforge/internal/iconref"
)

// Result is the outcome of a validity check.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Manifest maps a referenced path to the digest of its contents at the
// time the previous generation ran.
type Manifest map[string]string

// Check compares the canonical hash of currentSpritesJSON against
// previousHash; if they match, it walks every distinct path referenced
// by the decoded sprite map (including nested BlendIcon operands) and
// compares each against the manifest and the current on-disk digest, via
// digestPath (normally digest.File, injected so tests can avoid touching
// a real filesystem).
//
// A malformed currentSpritesJSON is a request-parse failure, not an
// ordinary invalid-cache outcome: it is returned as a non-nil error
// rather than folded into Result, so the boundary layer can surface it
// as a bare error string instead of the success-shaped JSON envelope.
// A digest I/O failure while checking an individual path, by contrast,
// is reported as part of Result (Valid: false), matching the ground
// truth's per-path failure handling.
func Check(previousHash string, manifest Manifest, currentSpritesJSON []byte, digestPath func(string) (string, error)) (Result, error) {
	currentHash := digest.Bytes(currentSpritesJSON)
	if currentHash != previousHash {
		return Result{Valid: false, Reason: "Input hash did not match."}, nil
	}

	var sprites map[string]iconref.IconRef
	if err := json.Unmarshal(currentSpritesJSON, &sprites); err != nil {
		return Result{}, fmt.Errorf("cachevalid: sprite JSON did not parse: %w", err)
	}

	paths := distinctPaths(sprites)
	for _, p := range paths {
		want, ok := manifest[p]
		if !ok {
			return Result{Valid: false, Reason: fmt.Sprintf("no manifest entry for path %q", p)}, nil
		}
		got, err := digestPath(p)
		if err != nil {
			return Result{Valid: false, Reason: fmt.Sprintf("path %q: %v", p, err)}, nil
		}
		if got != want {
			return Result{Valid: false, Reason: fmt.Sprintf("path %q digest changed", p)}, nil
		}
	}
	return Result{Valid: true}, nil
}

// distinctPaths enumerates every distinct file_path referenced by sprites,
// including nested BlendIcon.icon.file_path, in encounter order.
func distinctPaths(sprites map[string]iconref.IconRef) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	var walk func(r iconref.IconRef)
	walk = func(r iconref.IconRef) {
		add(r.FilePath)
		for _, nested := range r.NestedIconRefs() {
			walk(nested)
		}
	}
	for _, r := range sprites {
		walk(r)
	}
	return out
}
