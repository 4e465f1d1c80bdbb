// Package goldgen regenerates the golden output files the compiler's
// end-to-end tests compare against: for each testdata/*.c fixture, it
// compiles and runs the program against the tape simulator and writes
// stdout to testdata/<name>.golden, concurrently across fixtures, one
// goroutine per fixture under an errgroup.WithContext cancellation
// shape.
package goldgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nwillc/byteflow/compiler"
	"github.com/nwillc/byteflow/stdlib"
	"github.com/nwillc/byteflow/tape"
)

// Result is one fixture's regenerated golden output, or the error that
// stopped it from being produced.
type Result struct {
	Fixture string
	Golden  string
	Err     error
}

// Regenerate compiles and runs every "*.c" file under dir concurrently,
// writing each one's stdout to a sibling "<name>.golden" file, and
// returns one Result per fixture in no particular order. A failure in
// one fixture does not cancel the others -- each fixture's error is
// reported individually -- but the overall call still respects ctx.
func Regenerate(ctx context.Context, dir string) ([]Result, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.c"))
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(matches))
	eg, ctx := errgroup.WithContext(ctx)
	for i, path := range matches {
		i, path := i, path
		eg.Go(func() error {
			results[i] = regenerateOne(ctx, path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func regenerateOne(ctx context.Context, path string) Result {
	res := Result{Fixture: path}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	code, err := compiler.New(compiler.WithLibrary(stdlib.PrintNum, stdlib.PrintChar)).Compile(string(src))
	if err != nil {
		res.Err = err
		return res
	}

	var out bytes.Buffer
	m := tape.New(nil, &out)
	if err := m.Run(ctx, code); err != nil {
		res.Err = err
		return res
	}

	golden := strings.TrimSuffix(path, ".c") + ".golden"
	if err := os.WriteFile(golden, out.Bytes(), 0o644); err != nil {
		res.Err = err
		return res
	}
	res.Golden = golden
	return res
}
