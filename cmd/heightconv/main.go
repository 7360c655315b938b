// heightconv is a CLI utility for working with binary height data files.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/Faultbox/heightview/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "encode", "compress":
		cmdEncode(args)
	case "decode":
		cmdDecode(args)
	case "info":
		cmdInfo(args)
	case "gen", "generate":
		cmdGen(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`heightconv - height data conversion utility

Usage:
  heightconv <command> [options]

Commands:
  encode <in.json> <out.bin>         Convert a nested JSON array to binary
  decode <in.bin> [out.json]         Convert binary to a nested JSON array
  info <file.bin>                    Show dimensions and value range
  gen [options] <out.bin>            Generate simplex noise terrain

Examples:
  heightconv encode height_cache.json public/data/height_cache.bin
  heightconv info public/data/height_cache.bin
  heightconv gen -rows 1000 -cols 1000 -seed 7 public/data/noise.bin`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdEncode(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: heightconv encode <in.json> <out.bin>")
		os.Exit(1)
	}

	in, err := os.Open(args[0])
	if err != nil {
		fail(err)
	}
	defer in.Close()

	hd, err := readJSON(in)
	if err != nil {
		fail(err)
	}
	if err := hd.WriteFile(args[1]); err != nil {
		fail(err)
	}

	fmt.Printf("Wrote %s: %d x %d (%d bytes)\n", args[1], hd.Rows, hd.Cols, hd.Size())
}

func cmdDecode(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: heightconv decode <in.bin> [out.json]")
		os.Exit(1)
	}

	hd, err := formats.ParseHeightDataFile(args[0])
	if err != nil {
		fail(err)
	}

	out := os.Stdout
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			fail(err)
		}
		defer f.Close()
		out = f
	}
	if err := writeJSON(out, hd); err != nil {
		fail(err)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: heightconv info <file.bin>")
		os.Exit(1)
	}

	hd, err := formats.ParseHeightDataFile(args[0])
	if err != nil {
		fail(err)
	}

	lo, hi := hd.Range()
	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Rows:    %d\n", hd.Rows)
	fmt.Printf("Cols:    %d\n", hd.Cols)
	fmt.Printf("Size:    %.2f MB\n", float64(hd.Size())/(1024*1024))
	fmt.Printf("Range:   %g .. %g\n", lo, hi)
}

func cmdGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	opts := defaultNoiseOptions()
	fs.IntVar(&opts.Rows, "rows", opts.Rows, "Number of rows")
	fs.IntVar(&opts.Cols, "cols", opts.Cols, "Number of columns")
	fs.Int64Var(&opts.Seed, "seed", opts.Seed, "Noise seed")
	fs.IntVar(&opts.Octaves, "octaves", opts.Octaves, "Noise octaves")
	fs.Float64Var(&opts.Frequency, "freq", opts.Frequency, "Base frequency per sample")
	fs.Float64Var(&opts.Persistence, "persistence", opts.Persistence, "Amplitude falloff per octave")
	fs.Float64Var(&opts.Amplitude, "amp", opts.Amplitude, "Output height range")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: heightconv gen [options] <out.bin>")
		os.Exit(1)
	}

	hd, err := generate(opts)
	if err != nil {
		fail(err)
	}
	if err := hd.WriteFile(fs.Arg(0)); err != nil {
		fail(err)
	}

	lo, hi := hd.Range()
	fmt.Printf("Wrote %s: %d x %d, range %.3f .. %.3f\n", fs.Arg(0), hd.Rows, hd.Cols, lo, hi)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
