package runtime

import (
	"testing"

	"github.com/tilebound/iconforge/internal/gags"
	"github.com/tilebound/iconforge/internal/icondata"
	"github.com/tilebound/iconforge/internal/iconref"
)

func TestResolvePath(t *testing.T) {
	s := New("/root/data", nil)
	if got := s.ResolvePath("icons/foo.icfg"); got != "/root/data/icons/foo.icfg" {
		t.Errorf("got %q", got)
	}
	if got := s.ResolvePath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute paths must pass through unchanged, got %q", got)
	}
}

func TestInternSpritesCachesByContentHash(t *testing.T) {
	s := New("/root/data", nil)
	raw := []byte(`{"a":{"icon_file":"x.icfg","icon_state":"idle","dir":2,"frame":1}}`)

	m1, h1, err := s.InternSprites(raw)
	if err != nil {
		t.Fatal(err)
	}
	m2, h2, err := s.InternSprites(append([]byte(nil), raw...))
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("identical sprite JSON should hash identically")
	}
	if len(m1) != 1 || len(m2) != 1 {
		t.Fatalf("expected 1 sprite entry, got %d and %d", len(m1), len(m2))
	}
}

func TestInternSpritesRejectsBadJSON(t *testing.T) {
	s := New("/root/data", nil)
	if _, _, err := s.InternSprites([]byte("not json")); err == nil {
		t.Errorf("expected an error for malformed sprite JSON")
	}
}

func TestCleanupSkippedWhileBusy(t *testing.T) {
	s := New("/root/data", nil)
	s.Images.PutFull("k", &icondata.IconData{})

	s.BeginWork()
	ran, _, _ := s.Cleanup()
	if ran {
		t.Errorf("Cleanup should be skipped while a call is in flight")
	}
	s.EndWork()

	ran, fullRemoved, _ := s.Cleanup()
	if !ran {
		t.Errorf("Cleanup should run once no call is in flight")
	}
	if fullRemoved != 1 {
		t.Errorf("expected 1 entry removed, got %d", fullRemoved)
	}
}

func TestResolveRefResolvesNestedBlendIconOperand(t *testing.T) {
	s := New("/root/data", nil)
	ref := iconref.IconRef{
		FilePath:  "a.icfg",
		StateName: "idle",
		Transforms: []iconref.Transform{
			{
				Kind: iconref.KindBlendIcon,
				BlendIcon: &iconref.BlendIconParams{
					Icon: iconref.IconRef{FilePath: "b.icfg", StateName: "glow"},
					Mode: iconref.BlendAdd,
				},
			},
		},
	}
	resolved := s.ResolveRef(ref)
	if resolved.FilePath != "/root/data/a.icfg" {
		t.Errorf("top-level FilePath not resolved: %q", resolved.FilePath)
	}
	nested := resolved.Transforms[0].BlendIcon.Icon
	if nested.FilePath != "/root/data/b.icfg" {
		t.Errorf("nested BlendIcon operand FilePath not resolved: %q", nested.FilePath)
	}
	if ref.FilePath != "a.icfg" || ref.Transforms[0].BlendIcon.Icon.FilePath != "b.icfg" {
		t.Errorf("ResolveRef must not mutate its input, got %+v", ref)
	}
}

func TestGAGSConfigRoundTrip(t *testing.T) {
	s := New("/root/data", nil)
	if _, ok := s.GAGSConfig("missing"); ok {
		t.Errorf("expected no config cached yet")
	}
	cfg := &gags.Config{}
	s.PutGAGSConfig("cfg", cfg)
	if got, ok := s.GAGSConfig("cfg"); !ok || got != cfg {
		t.Errorf("GAGSConfig after Put = (%p, %v), want (%p, true)", got, ok, cfg)
	}
}
