// Package tape runs the byte-oriented tape machine the compiler
// targets: a fixed array of 8-bit wrapping cells, a data
// pointer, and the eight-instruction alphabet "> < + - . , [ ]".
package tape

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/nwillc/byteflow/internal/flushio"
)

// Size is the tape's fixed cell count.
const Size = 30000

// haltError is the halt-via-panic convention this package uses
// internally: a machine that runs off either end of its tape, or that
// executes "," with no input connected or gets a read error other than
// io.EOF, halts by panicking with one of these, which Run recovers into
// a returned error. A "," at the end of input stores 0 and continues.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

// Machine is one execution of a compiled program against its own
// tape, input, and output.
type Machine struct {
	Cells [Size]byte
	Ptr   int

	In  io.RuneReader
	Out flushio.WriteFlusher

	// Logf, if set, is called once per instruction with a mark and a
	// formatted message, for an instruction-level execution trace.
	Logf func(mark, mess string, args ...interface{})

	steps int
}

// New builds a Machine with the given input and output. out is
// wrapped in a buffering flushio.WriteFlusher -- a plain os.File gets
// batched, while an in-memory buffer or an already-flushable writer
// passes through untouched. Both default to doing nothing useful (no
// input available, output discarded) if nil.
func New(in io.RuneReader, out io.Writer) *Machine {
	if out == nil {
		out = ioutil.Discard
	}
	return &Machine{In: in, Out: flushio.NewWriteFlusher(out)}
}

func (m *Machine) halt(err error) {
	panic(haltError{err})
}

func (m *Machine) logf(mark, mess string, args ...interface{}) {
	if m.Logf == nil {
		return
	}
	m.Logf(mark, mess, args...)
}

// Run executes code against the machine's current tape state until
// the code runs out or ctx is done, checking ctx.Err() once per
// instruction.
func (m *Machine) Run(ctx context.Context, code string) (err error) {
	defer func() {
		if ferr := m.Out.Flush(); err == nil {
			err = ferr
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			if h, ok := r.(haltError); ok {
				err = h
				return
			}
			panic(r)
		}
	}()

	jumps := matchBrackets(code)
	ip := 0
	for ip < len(code) {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.step(code, ip, jumps)
		ip = m.nextIP(code, ip, jumps)
	}
	return nil
}

// nextIP advances ip past the instruction at ip, following a bracket
// jump when the instruction itself is "[" or "]" and the branch should
// be taken.
func (m *Machine) nextIP(code string, ip int, jumps []int) int {
	switch code[ip] {
	case '[':
		if m.Cells[m.Ptr] == 0 {
			return jumps[ip] + 1
		}
	case ']':
		if m.Cells[m.Ptr] != 0 {
			return jumps[ip] + 1
		}
	}
	return ip + 1
}

func (m *Machine) step(code string, ip int, jumps []int) {
	m.steps++
	c := code[ip]
	m.logf(fmt.Sprintf("%d", ip), "%c ptr=%d cell=%d", c, m.Ptr, m.Cells[m.Ptr])

	switch c {
	case '>':
		if m.Ptr++; m.Ptr >= Size {
			m.halt(fmt.Errorf("pointer ran off the right end of the tape"))
		}
	case '<':
		if m.Ptr--; m.Ptr < 0 {
			m.halt(fmt.Errorf("pointer ran off the left end of the tape"))
		}
	case '+':
		m.Cells[m.Ptr]++
	case '-':
		m.Cells[m.Ptr]--
	case '.':
		if _, err := m.Out.Write([]byte{m.Cells[m.Ptr]}); err != nil {
			m.halt(err)
		}
	case ',':
		if m.In == nil {
			m.halt(fmt.Errorf("read with no input connected"))
		}
		if err := m.Out.Flush(); err != nil {
			m.halt(err)
		}
		r, _, err := m.In.ReadRune()
		if err != nil {
			if err == io.EOF {
				m.Cells[m.Ptr] = 0
				return
			}
			m.halt(err)
		}
		m.Cells[m.Ptr] = byte(r)
	case '[', ']':
		// handled by nextIP's branch test
	default:
		// non-instruction bytes (e.g. a source comment character that
		// slipped through) are no-ops, matching a typical tape
		// machine's tolerance for stray text between instructions
	}
}

// matchBrackets precomputes, for every '[' and ']' in code, the index
// of its matching partner, so Run doesn't rescan the program on every
// loop iteration.
func matchBrackets(code string) []int {
	jumps := make([]int, len(code))
	var stack []int
	for i, c := range []byte(code) {
		switch c {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				panic(haltError{fmt.Errorf("unmatched ']' at %d", i)})
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open] = i
			jumps[i] = open
		}
	}
	if len(stack) != 0 {
		panic(haltError{fmt.Errorf("unmatched '[' at %d", stack[len(stack)-1])})
	}
	return jumps
}

// Steps reports how many instructions the machine has executed so
// far, across every Run call against it.
func (m *Machine) Steps() int { return m.steps }
