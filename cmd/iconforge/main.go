// Command iconforge drives the sprite compositor from the command line.
//
// Usage:
//
//	iconforge generate [options] <sprites.json>   Render a sprite map to a spritesheet
//	iconforge headless <out.png> <sprite.json>    Render a single sprite to one PNG
//	iconforge gags <config.json> <icon.dmi> <colors> <out.dmi>  Evaluate a GAGS config
//	iconforge cache-valid <hash> <digests.json> <sprites.json>  Check cache validity
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tilebound/iconforge"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:])
	case "headless":
		err = runHeadless(os.Args[2:])
	case "gags":
		err = runGAGS(os.Args[2:])
	case "cache-valid":
		err = runCacheValid(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "iconforge: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "iconforge: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  iconforge generate [options] <sprites.json>
  iconforge headless <out.png> <sprite.json>
  iconforge gags <config.json> <icon.dmi> <colors> <out.dmi>
  iconforge cache-valid <hash> <digests.json> <sprites.json>

Run "iconforge <command> -h" for command-specific options.
`)
}

func newLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	root := fs.String("root", ".", "root directory for resolving sprite paths and output")
	outDir := fs.String("out", ".", "output directory prefix")
	sheetName := fs.String("name", "sheet", "output sheet base name")
	hash := fs.Bool("hash", false, "include sprites/dmi hashes in the result")
	dmiMode := fs.Bool("dmi", false, "write an animation file instead of a PNG sheet")
	flatten := fs.Bool("flatten", false, "flatten every sprite to a single frame/dir before packing")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("generate: missing sprites.json\nUsage: iconforge generate [options] <sprites.json>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	eng := iconforge.New(*root, newLogger())
	out := eng.Generate(*outDir, *sheetName, string(data), boolFlag(*hash), boolFlag(*dmiMode), boolFlag(*flatten))
	fmt.Println(out)
	return nil
}

func runHeadless(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("headless: missing arguments\nUsage: iconforge headless <out.png> <sprite.json>")
	}
	outPath, spritePath := args[0], args[1]

	data, err := os.ReadFile(spritePath)
	if err != nil {
		return err
	}

	eng := iconforge.New(".", newLogger())
	out := eng.GenerateHeadless(outPath, string(data), "1")
	fmt.Println(out)
	return nil
}

func runGAGS(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("gags: missing arguments\nUsage: iconforge gags <config.json> <icon.dmi> <colors> <out.dmi>")
	}
	configPath, iconPath, colors, outPath := args[0], args[1], args[2], args[3]

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	eng := iconforge.New(".", newLogger())
	if res := eng.LoadGAGSConfig(configPath, string(configData), iconPath); res != "OK" {
		return fmt.Errorf("%s", res)
	}
	out := eng.GAGS(configPath, colors, outPath)
	fmt.Println(out)
	if out != "OK" {
		return fmt.Errorf("gags evaluation failed")
	}
	return nil
}

func runCacheValid(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("cache-valid: missing arguments\nUsage: iconforge cache-valid <hash> <digests.json> <sprites.json>")
	}
	hash, digestsPath, spritesPath := args[0], args[1], args[2]

	digestsData, err := os.ReadFile(digestsPath)
	if err != nil {
		return err
	}
	spritesData, err := os.ReadFile(spritesPath)
	if err != nil {
		return err
	}

	eng := iconforge.New(".", newLogger())
	out := eng.CacheValid(hash, string(digestsData), string(spritesData))
	fmt.Println(out)
	return nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
