// Command byteflowc compiles a source program to tape-machine code,
// and optionally runs the result against the tape simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/nwillc/byteflow/compiler"
	"github.com/nwillc/byteflow/internal/logio"
	"github.com/nwillc/byteflow/stdlib"
	"github.com/nwillc/byteflow/tape"
)

func main() {
	var (
		timeout  time.Duration
		optimize bool
		trace    bool
		run      bool
		emitTape bool
	)
	flag.DurationVar(&timeout, "timeout", 0, "bound execution of the compiled program under -run")
	flag.BoolVar(&optimize, "optimize", true, "run the peephole optimizer over emitted code")
	flag.BoolVar(&trace, "trace", false, "log the compiler's diagnostic messages")
	flag.BoolVar(&run, "run", false, "execute the compiled program against the tape simulator")
	flag.BoolVar(&emitTape, "emit-tape-dump", false, "after -run, dump the final tape state")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	source, err := readSource(flag.Args())
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := []compiler.Option{
		compiler.WithOptimize(optimize),
		compiler.WithLibrary(stdlib.PrintNum, stdlib.PrintChar),
	}
	if trace {
		opts = append(opts, compiler.WithLogf(log.Leveledf("TRACE")))
	}

	code, err := compiler.New(opts...).Compile(source)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	if !run {
		fmt.Println(code)
		return
	}

	m := tape.New(nil, os.Stdout)
	if err := m.Run(ctx, code); err != nil {
		log.Errorf("%v", err)
		return
	}

	if emitTape {
		dumpTape(m, &log)
	}
}

func readSource(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := ioutil.ReadAll(os.Stdin)
		return string(b), err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	return string(b), err
}

// dumpTape prints every nonzero cell up to the data pointer, a small
// post-mortem inspection aid for a program that halted unexpectedly.
func dumpTape(m *tape.Machine, log *logio.Logger) {
	logf := log.Leveledf("DUMP")
	for i := 0; i <= m.Ptr; i++ {
		if v := m.Cells[i]; v != 0 {
			logf("cell %d = %d", i, v)
		}
	}
}
