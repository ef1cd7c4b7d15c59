package cachevalid

import (
	"fmt"
	"testing"

	"github.com/tilebound/iconforge/internal/digest"
)

func TestCheckRejectsMismatchedInputHash(t *testing.T) {
	spritesJSON := []byte(`{"a":{"icon_file":"f.icfg","icon_state":"idle"}}`)
	res, err := Check("not-the-real-hash", Manifest{}, spritesJSON, func(string) (string, error) { return "", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Fatalf("expected invalid result on hash mismatch, got %+v", res)
	}
}

func TestCheckValidWhenDigestsMatch(t *testing.T) {
	spritesJSON := []byte(`{"a":{"icon_file":"f.icfg","icon_state":"idle"}}`)
	hash := digest.Bytes(spritesJSON)
	manifest := Manifest{"f.icfg": "digest-1"}

	res, err := Check(hash, manifest, spritesJSON, func(p string) (string, error) {
		return manifest[p], nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid result, got %+v", res)
	}
}

func TestCheckInvalidOnDigestDrift(t *testing.T) {
	spritesJSON := []byte(`{"a":{"icon_file":"f.icfg","icon_state":"idle"}}`)
	hash := digest.Bytes(spritesJSON)
	manifest := Manifest{"f.icfg": "digest-1"}

	res, err := Check(hash, manifest, spritesJSON, func(p string) (string, error) {
		return "digest-2-changed", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Fatalf("expected invalid result when the on-disk digest drifted, got %+v", res)
	}
}

func TestCheckInvalidOnMissingManifestEntry(t *testing.T) {
	spritesJSON := []byte(`{"a":{"icon_file":"f.icfg","icon_state":"idle"}}`)
	hash := digest.Bytes(spritesJSON)

	res, err := Check(hash, Manifest{}, spritesJSON, func(string) (string, error) {
		return "", fmt.Errorf("should not be called")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Fatalf("expected invalid result for a path missing from the manifest")
	}
}

// TestCheckReturnsErrorOnMalformedSpritesJSON covers the request-parse
// failure path: a malformed current_sprites_json must surface as a
// distinct error, not as Result{Valid:false}, so the boundary layer can
// return a bare error string instead of the success-shaped JSON envelope.
func TestCheckReturnsErrorOnMalformedSpritesJSON(t *testing.T) {
	spritesJSON := []byte(`not json`)
	hash := digest.Bytes(spritesJSON)

	_, err := Check(hash, Manifest{}, spritesJSON, func(string) (string, error) {
		return "", fmt.Errorf("should not be called")
	})
	if err == nil {
		t.Fatalf("expected an error for malformed sprite JSON")
	}
}
