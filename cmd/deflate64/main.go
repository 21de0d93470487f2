// Command deflate64 decompresses a raw Deflate64 bitstream, the way
// JoshVarga/blast's cmd/blast mirrors blast.NewReader for DCL streams.
// It reads pflag-style long options instead of the teacher's flag
// package, matching the rest of the retrieved corpus's CLI style.
package main

import (
	"io"
	"log"
	"os"

	"github.com/anthropic-go-student/deflate64"
	flag "github.com/spf13/pflag"
)

func main() {
	inputFile := flag.StringP("input", "i", "", "input file (defaults to stdin)")
	outputFile := flag.StringP("output", "o", "", "output file (defaults to stdout)")
	size := flag.Uint64P("size", "s", 0, "expected uncompressed size; 0 means unbounded")
	flag.Parse()

	in := os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	var r *deflate64.Reader
	if *size > 0 {
		r = deflate64.NewReaderSize(in, *size)
	} else {
		r = deflate64.NewReader(in)
	}
	defer r.Close()

	if _, err := io.Copy(out, r); err != nil {
		log.Fatal(err)
	}
}
