package iconforge

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/tilebound/iconforge/internal/digest"
	"github.com/tilebound/iconforge/internal/dmi"
)

func writeFixtureSet(t *testing.T, dir, name string, states ...*dmi.IconState) string {
	t.Helper()
	data, err := dmi.Encode(&dmi.IconSet{States: states})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func flatState(name string, c color.NRGBA) *dmi.IconState {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return &dmi.IconState{Name: name, Dirs: 1, Frames: 1, Delay: []float32{1}, LoopFlag: -1, Images: []*image.NRGBA{img}}
}

func TestGenerateWritesPNGSheet(t *testing.T) {
	dir := t.TempDir()
	iconPath := writeFixtureSet(t, dir, "src.icfg", flatState("idle", color.NRGBA{R: 9, A: 255}))

	eng := New(dir, nil)
	sprites := map[string]any{
		"a": map[string]any{"icon_file": iconPath, "icon_state": "idle"},
	}
	spritesJSON, _ := json.Marshal(sprites)

	out := eng.Generate("out", "sheet", string(spritesJSON), "0", "0", "1")

	var result generateResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Generate did not return valid JSON: %v\nraw: %s", err, out)
	}
	if result.Error != "" {
		t.Fatalf("Generate reported an error: %s", result.Error)
	}
	if len(result.Sizes) != 1 {
		t.Fatalf("expected 1 size group, got %+v", result.Sizes)
	}
	writtenPath := filepath.Join(dir, "out", fmt.Sprintf("sheet_%s.png", result.Sizes[0]))
	if _, err := os.Stat(writtenPath); err != nil {
		t.Errorf("expected a PNG sheet at %s: %v", writtenPath, err)
	}
}

func TestGenerateHeadlessWritesSinglePNG(t *testing.T) {
	dir := t.TempDir()
	iconPath := writeFixtureSet(t, dir, "src.icfg", flatState("idle", color.NRGBA{G: 7, A: 255}))

	eng := New(dir, nil)
	refJSON, _ := json.Marshal(map[string]any{"icon_file": iconPath, "icon_state": "idle"})

	out := eng.GenerateHeadless("headless.png", string(refJSON), "1")
	var res headlessResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("not valid JSON: %v\nraw: %s", err, out)
	}
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.Width != 2 || res.Height != 2 {
		t.Errorf("expected 2x2, got %dx%d", res.Width, res.Height)
	}
	if _, err := os.Stat(filepath.Join(dir, "headless.png")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestGenerateHeadlessRejectsMultiFrameWithoutFlatten(t *testing.T) {
	dir := t.TempDir()
	st := flatState("idle", color.NRGBA{A: 255})
	st.Dirs = 2
	st.Images = append(st.Images, st.Images[0])
	iconPath := writeFixtureSet(t, dir, "src.icfg", st)

	eng := New(dir, nil)
	refJSON, _ := json.Marshal(map[string]any{"icon_file": iconPath, "icon_state": "idle"})

	out := eng.GenerateHeadless("headless.png", string(refJSON), "0")
	var res headlessResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("not valid JSON: %v\nraw: %s", err, out)
	}
	if res.Error == "" {
		t.Errorf("expected a shape error when flatten_flag is not set on a multi-image icon")
	}
}

// TestGenerateAbortsOnMalformedSpritesJSON covers the request-parse
// failure path: a malformed sprites_json must abort with the error
// string itself as the return value, not a generateResult JSON envelope.
func TestGenerateAbortsOnMalformedSpritesJSON(t *testing.T) {
	eng := New(t.TempDir(), nil)
	out := eng.Generate("out", "sheet", "not json", "0", "0", "1")

	var probe generateResult
	if err := json.Unmarshal([]byte(out), &probe); err == nil {
		t.Fatalf("expected a bare error string, got valid generateResult JSON: %s", out)
	}
}

func TestCacheValidAbortsOnMalformedDigestsJSON(t *testing.T) {
	eng := New(t.TempDir(), nil)
	out := eng.CacheValid("h", "not json", "{}")

	var probe map[string]string
	if err := json.Unmarshal([]byte(out), &probe); err == nil {
		t.Fatalf("expected a bare error string, got valid JSON envelope: %s", out)
	}
}

func TestCacheValidAbortsOnMalformedSpritesJSON(t *testing.T) {
	eng := New(t.TempDir(), nil)
	badSprites := "not json"
	hash := digest.Bytes([]byte(badSprites))
	out := eng.CacheValid(hash, "{}", badSprites)

	var probe map[string]string
	if err := json.Unmarshal([]byte(out), &probe); err == nil {
		t.Fatalf("expected a bare error string, got valid JSON envelope: %s", out)
	}
}

func TestCacheValidDetectsDriftedInputHash(t *testing.T) {
	eng := New(t.TempDir(), nil)
	out := eng.CacheValid("stale-hash", "{}", "{}")
	var res map[string]string
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res["result"] != "0" {
		t.Errorf("expected result 0 on hash mismatch, got %+v", res)
	}
}

func TestCheckJobUnknownID(t *testing.T) {
	eng := New(t.TempDir(), nil)
	if got := eng.CheckJob("never-started"); got != "NO SUCH JOB" {
		t.Errorf("got %q", got)
	}
}

func TestGAGSWithoutLoadedConfigErrors(t *testing.T) {
	eng := New(t.TempDir(), nil)
	out := eng.GAGS("missing-config", "#ff0000", "out.dmi")
	if out == "OK" {
		t.Errorf("expected an error referencing the missing config")
	}
}

func TestLoadAndRunGAGSConfig(t *testing.T) {
	dir := t.TempDir()
	iconPath := writeFixtureSet(t, dir, "template.icfg", flatState("base", color.NRGBA{R: 3, A: 255}))

	eng := New(dir, nil)
	cfgJSON := `{"out": [{"type": "icon_state", "state": "base"}]}`
	loadOut := eng.LoadGAGSConfig("cfg1", cfgJSON, iconPath)
	if loadOut != "OK" {
		t.Fatalf("LoadGAGSConfig failed: %s", loadOut)
	}

	runOut := eng.GAGS("cfg1", "#ff0000", "result.dmi")
	if runOut != "OK" {
		t.Fatalf("GAGS failed: %s", runOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "result.dmi")); err != nil {
		t.Errorf("expected output animation file: %v", err)
	}
}

func TestCleanupReportsOkWhenIdle(t *testing.T) {
	eng := New(t.TempDir(), nil)
	if got := eng.Cleanup(); got != "Ok" {
		t.Errorf("got %q", got)
	}
}
