// Command seed-records writes a synthetic JSONL record dump compatible
// with the dataset_path config option, one record per line.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"os"

	"github.com/irongraph/irongraph/internal/simdata"
)

func main() {
	var (
		count = flag.Int("n", 50_000, "number of records to generate")
		seed  = flag.Int64("seed", 1, "generator seed; same seed, same dump")
		out   = flag.String("out", "", "output path (default stdout)")
	)
	flag.Parse()

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			os.Stderr.WriteString("create output: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	bw := bufio.NewWriter(w)
	defer func() { _ = bw.Flush() }()

	enc := json.NewEncoder(bw)
	for _, r := range simdata.Generate(*count, *seed) {
		if err := enc.Encode(r); err != nil {
			os.Stderr.WriteString("encode record: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
}
