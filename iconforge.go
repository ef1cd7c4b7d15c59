// Package iconforge is a parallel 2-D sprite compositor and
// spritesheet/animation packer for tile-based games. Sprites are
// declared as references to indexed animation files plus a pipeline of
// pixel transforms; generate composites them into a flat PNG
// spritesheet or an indexed animation file, while the GAGS mode
// evaluates recursive, color-parameterised layer trees against a
// template animation file.
//
// Every exported entry point below follows the same boundary contract:
// string arguments in, a single string out, no panic ever crosses the
// call.
package iconforge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tilebound/iconforge/internal/cachevalid"
	"github.com/tilebound/iconforge/internal/digest"
	"github.com/tilebound/iconforge/internal/dmi"
	"github.com/tilebound/iconforge/internal/gags"
	"github.com/tilebound/iconforge/internal/iconref"
	"github.com/tilebound/iconforge/internal/pack"
	"github.com/tilebound/iconforge/internal/panichook"
	"github.com/tilebound/iconforge/internal/runtime"
	"github.com/tilebound/iconforge/internal/transformtree"
)

// Engine is the process-wide handle the boundary functions operate
// against. Construct one with New and keep it for the process lifetime.
type Engine struct {
	state *runtime.State
}

// New returns an Engine rooted at root (used to resolve relative sprite
// paths). Pass a nil logger to use a no-op logger.
func New(root string, log *zap.Logger) *Engine {
	if log != nil {
		panichook.SetLogger(log)
	}
	return &Engine{state: runtime.New(root, log)}
}

// requestParseError marks a failure to parse the caller's top-level
// request JSON (as opposed to a per-sprite processing error). The
// boundary wrapper returns these as a bare error string rather than
// folding them into a success-shaped JSON envelope.
type requestParseError struct{ err error }

func (e *requestParseError) Error() string { return e.err.Error() }
func (e *requestParseError) Unwrap() error { return e.err }

// generateResult is the JSON shape returned by Generate.
type generateResult struct {
	Sizes       []string                 `json:"sizes"`
	Sprites     map[string]pack.Position `json:"sprites"`
	DMIHashes   map[string]string        `json:"dmi_hashes,omitempty"`
	SpritesHash string                   `json:"sprites_hash,omitempty"`
	Error       string                   `json:"error"`
}

// Generate is the synchronous `generate` boundary entry point.
func (e *Engine) Generate(filePathPrefix, sheetName, spritesJSON, hashFlag, dmiFlag, flattenFlag string) string {
	return panichook.Guard("generate", "JOB PANICKED", func() string {
		e.state.BeginWork()
		defer e.state.EndWork()

		out, err := e.generate(filePathPrefix, sheetName, spritesJSON, hashFlag, dmiFlag, flattenFlag)
		var parseErr *requestParseError
		if errors.As(err, &parseErr) {
			return parseErr.Error()
		}
		if err != nil {
			out.Error = err.Error()
		}
		b, mErr := json.Marshal(out)
		if mErr != nil {
			return fmt.Sprintf("Internal: marshalling result: %v", mErr)
		}
		return string(b)
	})
}

func (e *Engine) generate(filePathPrefix, sheetName, spritesJSON, hashFlag, dmiFlag, flattenFlag string) (generateResult, error) {
	result := generateResult{Sprites: make(map[string]pack.Position)}

	sprites, hash, err := e.state.InternSprites([]byte(spritesJSON))
	if err != nil {
		return result, &requestParseError{err: err}
	}
	if hashFlag == "1" {
		result.SpritesHash = hash
	}

	var named []transformtree.Named
	for name, ref := range sprites {
		named = append(named, transformtree.Named{Name: name, Ref: e.state.ResolveRef(ref)})
	}

	tree := transformtree.New(e.state.Icons, e.state.Images, e.state.Log)
	resolved, err := tree.Resolve(named)
	if err != nil {
		return result, err
	}

	var errLines []string
	var sheetSprites []pack.Sprite
	for _, r := range resolved {
		d := r.Data
		if flattenFlag == "1" {
			d = d.Flatten()
		}
		sheetSprites = append(sheetSprites, pack.Sprite{Name: r.Name, Data: d})
	}

	if dmiFlag == "1" {
		sets, err := pack.PackAnimation(sheetSprites)
		if err != nil {
			errLines = append(errLines, err.Error())
		} else {
			for sizeID, set := range sets {
				data, err := dmi.Encode(set)
				if err != nil {
					errLines = append(errLines, err.Error())
					continue
				}
				path := filepath.Join(filePathPrefix, fmt.Sprintf("%s_%s.dmi", sheetName, sizeID))
				if err := writeFile(e.state.ResolvePath(path), data); err != nil {
					errLines = append(errLines, err.Error())
					continue
				}
				result.Sizes = append(result.Sizes, sizeID)
				if hashFlag == "1" {
					if result.DMIHashes == nil {
						result.DMIHashes = make(map[string]string)
					}
					result.DMIHashes[sizeID] = digestBytes(data)
				}
			}
		}
	} else {
		sheet, err := pack.PackPNG(sheetSprites)
		if err != nil {
			errLines = append(errLines, err.Error())
		} else {
			for sizeID, img := range sheet.Images {
				data, err := pack.EncodePNG(img)
				if err != nil {
					errLines = append(errLines, err.Error())
					continue
				}
				path := filepath.Join(filePathPrefix, fmt.Sprintf("%s_%s.png", sheetName, sizeID))
				if err := writeFile(e.state.ResolvePath(path), data); err != nil {
					errLines = append(errLines, err.Error())
					continue
				}
				result.Sizes = append(result.Sizes, sizeID)
			}
			for name, pos := range sheet.Positions {
				result.Sprites[name] = pos
			}
		}
	}

	if len(errLines) > 0 {
		return result, fmt.Errorf("%s", strings.Join(errLines, "\n"))
	}
	return result, nil
}

// GenerateAsync is the `generate_async` boundary entry point: it starts
// Generate's work on its own goroutine and returns immediately with a
// job id that CheckJob can later poll.
func (e *Engine) GenerateAsync(filePathPrefix, sheetName, spritesJSON, hashFlag, dmiFlag, flattenFlag string) string {
	return e.state.Jobs.Start(func() string {
		return e.Generate(filePathPrefix, sheetName, spritesJSON, hashFlag, dmiFlag, flattenFlag)
	})
}

type headlessResult struct {
	FilePath string `json:"file_path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Error    string `json:"error,omitempty"`
}

// GenerateHeadless is the `generate_headless` boundary entry point: it
// resolves a single IconRef and writes one PNG file.
func (e *Engine) GenerateHeadless(filePath, spriteJSON, flattenFlag string) string {
	return panichook.Guard("generate_headless", "JOB PANICKED", func() string {
		e.state.BeginWork()
		defer e.state.EndWork()

		var ref iconref.IconRef
		res := headlessResult{FilePath: filePath}
		if err := json.Unmarshal([]byte(spriteJSON), &ref); err != nil {
			res.Error = err.Error()
			return marshalOrPanic(res)
		}

		ref = e.state.ResolveRef(ref)
		tree := transformtree.New(e.state.Icons, e.state.Images, e.state.Log)
		resolved, err := tree.Resolve([]transformtree.Named{{Name: "headless", Ref: ref}})
		if err != nil {
			res.Error = err.Error()
			return marshalOrPanic(res)
		}

		d := resolved[0].Data
		if flattenFlag == "1" {
			d = d.Flatten()
		} else if len(d.Images) != 1 {
			res.Error = fmt.Sprintf("Shape: icon has %d images; pass flatten_flag to collapse to one", len(d.Images))
			return marshalOrPanic(res)
		}
		img := d.Images[0]
		data, err := pack.EncodePNG(img)
		if err != nil {
			res.Error = err.Error()
			return marshalOrPanic(res)
		}
		if err := writeFile(e.state.ResolvePath(filePath), data); err != nil {
			res.Error = err.Error()
			return marshalOrPanic(res)
		}
		b := img.Bounds()
		res.Width, res.Height = b.Dx(), b.Dy()
		return marshalOrPanic(res)
	})
}

// CacheValid is the `cache_valid` boundary entry point. A malformed
// prev_digests_json or current_sprites_json aborts the request with a
// bare error string, distinct from the `{result, fail_reason}` JSON
// envelope that reports an ordinary cache-invalid outcome.
func (e *Engine) CacheValid(prevHash, prevDigestsJSON, currentSpritesJSON string) string {
	return panichook.Guard("cache_valid", "JOB PANICKED", func() string {
		var manifest cachevalid.Manifest
		if err := json.Unmarshal([]byte(prevDigestsJSON), &manifest); err != nil {
			return fmt.Sprintf("InputParse: prev_digests_json: %v", err)
		}
		res, err := cachevalid.Check(prevHash, manifest, []byte(currentSpritesJSON), func(p string) (string, error) {
			resolved := e.state.ResolvePath(p)
			if dg, ok := e.state.Icons.Digest(resolved); ok {
				return dg, nil
			}
			return digestFile(resolved)
		})
		if err != nil {
			return fmt.Sprintf("InputParse: current_sprites_json: %v", err)
		}
		result := "0"
		if res.Valid {
			result = "1"
		}
		return marshalOrPanic(map[string]string{"result": result, "fail_reason": res.Reason})
	})
}

// LoadGAGSConfig is the `load_gags_config` boundary entry point.
func (e *Engine) LoadGAGSConfig(configPath, configJSON, iconPath string) string {
	return panichook.Guard("load_gags_config", "JOB PANICKED", func() string {
		data, err := os.ReadFile(e.state.ResolvePath(iconPath))
		if err != nil {
			return err.Error()
		}
		template, err := dmi.Decode(data)
		if err != nil {
			return err.Error()
		}
		cfg, err := gags.UnmarshalConfigJSON([]byte(configJSON), template)
		if err != nil {
			return err.Error()
		}
		e.state.PutGAGSConfig(configPath, cfg)
		return "OK"
	})
}

// GAGS is the `gags` boundary entry point: evaluates every state of the
// config previously loaded at configPath with the given colors, writing
// the resulting animation file to outputPath.
func (e *Engine) GAGS(configPath, colorsConcatenated, outputPath string) string {
	return panichook.Guard("gags", "JOB PANICKED", func() string {
		e.state.BeginWork()
		defer e.state.EndWork()

		cfg, ok := e.state.GAGSConfig(configPath)
		if !ok {
			return fmt.Sprintf("MissingAsset: no GAGS config loaded at %q", configPath)
		}
		pal := gags.ParseColorsArg(colorsConcatenated)

		set := &dmi.IconSet{}
		var errLines []string
		for _, name := range gags.SortedStateNames(cfg) {
			st, err := gags.Evaluate(cfg, name, pal)
			if err != nil {
				errLines = append(errLines, err.Error())
				continue
			}
			set.States = append(set.States, st)
		}
		if len(errLines) > 0 {
			return strings.Join(errLines, "\n")
		}

		data, err := dmi.Encode(set)
		if err != nil {
			return err.Error()
		}
		if err := writeFile(e.state.ResolvePath(outputPath), data); err != nil {
			return err.Error()
		}
		return "OK"
	})
}

// CheckJob is the `check_job` boundary entry point.
func (e *Engine) CheckJob(id string) string {
	return e.state.Jobs.Check(id)
}

// Cleanup is the `cleanup` boundary entry point.
func (e *Engine) Cleanup() string {
	return panichook.Guard("cleanup", "JOB PANICKED", func() string {
		ran, _, _ := e.state.Cleanup()
		if !ran {
			return "Skipped, cache in use"
		}
		return "Ok"
	})
}

func marshalOrPanic(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func digestBytes(b []byte) string {
	return digest.Bytes(b)
}

func digestFile(path string) (string, error) {
	return digest.File(path)
}

// writeFile creates path's parent directory if needed before writing, so
// that a file_path_prefix naming a not-yet-existing output directory just
// works rather than requiring the caller to pre-create it.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
