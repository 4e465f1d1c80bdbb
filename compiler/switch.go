package compiler

import (
	"strconv"
	"strings"

	"github.com/nwillc/byteflow/parse"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// compileSwitch lowers switch/case/default with fall-through. A
// switch's body is one lexical block -- case/default are just labels
// within it, exactly as in C -- so its declarations are predeclared
// once across the whole body. Two sticky flags drive dispatch:
// anyMatch, computed in a pass over every case label before any
// statement runs, lets a `default:` act as "run only if nothing else
// matched" regardless of where it sits in source order; started,
// updated as each label is passed in source order, makes a matched
// case (or the default) and everything lexically after it active,
// implementing fall-through. `break` sets the other sticky flag,
// broken, gating every later statement off. Every branch of the body
// walk below starts and ends with the pointer parked on a dedicated
// anchor cell, pos, so the branches can be emitted independently of
// one another.
func (fc *FuncCompiler) compileSwitch(cur int) string {
	fc.p.Advance() // 'switch'
	fc.p.CheckCurrentIs(token.LParen)
	fc.p.Advance()
	subject := fc.parseExpr()
	fc.p.CheckCurrentIs(token.RParen)
	fc.p.Advance()

	fc.p.CheckCurrentIs(token.LBrace)
	open := fc.p.CurrentIndex
	closeIdx := fc.p.FindMatching(open)

	scope := fc.env.EnterScope()
	scope.SetNext(cur)
	predeclare(fc.p, scope, open+1, closeIdx)

	switchVal := scope.Next()
	anyMatch, started, broken, pos := switchVal+1, switchVal+2, switchVal+3, switchVal+4

	labels := collectCaseLabels(fc.p, open+1, closeIdx)

	var sb strings.Builder
	sb.WriteString(move(cur, switchVal))
	sb.WriteString(subject.Emit(switchVal))
	sb.WriteString(move(switchVal+1, switchVal))

	sb.WriteString(move(switchVal, anyMatch) + "[-]")
	for _, label := range labels {
		sb.WriteString(move(anyMatch, pos) + "[-]")
		sb.WriteString(move(pos, switchVal))
		sb.WriteString(copyCellStmt(switchVal, pos, pos+1))
		sb.WriteString(move(switchVal, pos))
		sb.WriteString(strings.Repeat("-", wrap8(label)))
		sb.WriteString(ifZeroStmt(pos, pos+1, move(pos, anyMatch)+"[-]+"+move(anyMatch, pos)))
		sb.WriteString(move(pos, anyMatch))
	}

	sb.WriteString(move(anyMatch, started) + "[-]")
	sb.WriteString(move(started, broken) + "[-]")
	sb.WriteString(move(broken, pos))

	prevBroken := fc.switchBroken
	fc.switchBroken = broken
	sb.WriteString(fc.compileSwitchBody(open+1, closeIdx, switchVal, anyMatch, started, broken, pos))
	fc.switchBroken = prevBroken

	fc.env.ExitScope()
	fc.p.AdvanceTo(closeIdx + 1)
	for c := pos; c > switchVal; c-- {
		sb.WriteString(move(c, c-1) + "[-]")
	}
	sb.WriteString(move(switchVal, cur))
	return sb.String()
}

func wrap8(n int) int { return ((n % 256) + 256) % 256 }

// collectCaseLabels scans a switch body for every `case LITERAL :`
// label's compile-time integer value, in source order, without
// descending into nested blocks, and rejects a repeated case value the
// same way a repeated default would be ambiguous.
func collectCaseLabels(p *parse.Parser, start, end int) []int {
	var labels []int
	seen := map[int]bool{}
	sawDefault := false
	i := start
	for i < end {
		t := p.TokenAt(i)
		if t == nil {
			break
		}
		if t.Type == token.LBrace {
			i = p.FindMatching(i) + 1
			continue
		}
		if t.Type == token.Default {
			if sawDefault {
				panic(&symtab.SemanticError{Message: "switch already has a default case"})
			}
			sawDefault = true
			i++
			continue
		}
		if t.Type == token.Case {
			labelTok := p.TokenAt(i + 1)
			if labelTok == nil || !token.IsLiteral(*labelTok) {
				panic(&parse.SyntaxError{Token: safeTok(labelTok), Message: "expected a constant case label"})
			}
			value := literalIntValue(*labelTok)
			if seen[value] {
				panic(&symtab.SemanticError{Message: "duplicate case value in switch"})
			}
			seen[value] = true
			labels = append(labels, value)
			i += 2
			continue
		}
		i++
	}
	return labels
}

func literalIntValue(t token.Token) int {
	switch t.Type {
	case token.Num:
		n, _ := strconv.Atoi(t.Data)
		return n
	case token.Char:
		return int([]rune(t.Data)[0])
	case token.True:
		return 1
	case token.False:
		return 0
	}
	return 0
}

// compileSwitchBody walks the switch body's token range, starting and
// ending every branch with the pointer parked at pos. Case labels are
// emitted in source order; the default clause, if any, is emitted
// logically last regardless of where its label sits in source, so a
// default acts as if it were placed after every case -- its own token
// range is carved out of the main walk and re-walked afterward, over
// the same started/broken cells, so a default that happens to sit
// before a later non-matching case no longer drags that case's body
// into its fall-through.
func (fc *FuncCompiler) compileSwitchBody(start, end, switchVal, anyMatch, started, broken, pos int) string {
	defStart, defEnd := findDefaultClauseRange(fc.p, start, end)

	var sb strings.Builder
	sb.WriteString(fc.walkSwitchRange(start, end, defStart, defEnd, switchVal, anyMatch, started, broken, pos))
	if defStart >= 0 {
		sb.WriteString(fc.walkSwitchRange(defStart, defEnd, -1, -1, switchVal, anyMatch, started, broken, pos))
	}
	return sb.String()
}

// findDefaultClauseRange scans [start, end) for a top-level `default :`
// label, without descending into nested blocks, and returns the index
// of the `default` token and the index just past its clause's last
// statement (the next top-level case/default label, or end). Returns
// (-1, -1) if the body has no default clause.
func findDefaultClauseRange(p *parse.Parser, start, end int) (int, int) {
	i := start
	for i < end {
		t := p.TokenAt(i)
		if t == nil {
			return -1, -1
		}
		if t.Type == token.LBrace {
			i = p.FindMatching(i) + 1
			continue
		}
		if t.Type == token.Default {
			j := i + 2 // past 'default' ':'
			for j < end {
				nt := p.TokenAt(j)
				if nt == nil {
					break
				}
				if nt.Type == token.LBrace {
					j = p.FindMatching(j) + 1
					continue
				}
				if nt.Type == token.Case || nt.Type == token.Default {
					break
				}
				j++
			}
			return i, j
		}
		i++
	}
	return -1, -1
}

// walkSwitchRange emits code for the token range [start, end), skipping
// [skipStart, skipEnd) entirely (used to carve the default clause out
// of the main walk so compileSwitchBody can re-emit it last).
func (fc *FuncCompiler) walkSwitchRange(start, end, skipStart, skipEnd, switchVal, anyMatch, started, broken, pos int) string {
	var sb strings.Builder
	fc.p.AdvanceTo(start)
	for fc.p.CurrentIndex < end {
		if skipStart >= 0 && fc.p.CurrentIndex == skipStart {
			fc.p.AdvanceTo(skipEnd)
			continue
		}
		t := fc.p.Current()
		switch t.Type {
		case token.Case:
			fc.p.Advance()
			labelTok := fc.p.Current()
			fc.p.Advance()
			fc.p.CheckCurrentIs(token.Colon)
			fc.p.Advance()
			label := literalIntValue(*labelTok)

			tcell := pos + 1
			sb.WriteString(move(pos, tcell) + "[-]")
			sb.WriteString(move(tcell, switchVal))
			sb.WriteString(copyCellStmt(switchVal, tcell, pos+2))
			sb.WriteString(move(switchVal, tcell))
			sb.WriteString(strings.Repeat("-", wrap8(label)))
			sb.WriteString(ifZeroStmt(tcell, pos+2, move(tcell, started)+"[-]+"+move(started, tcell)))
			sb.WriteString(move(tcell, pos))

		case token.Default:
			fc.p.Advance()
			fc.p.CheckCurrentIs(token.Colon)
			fc.p.Advance()

			tcell := pos + 1
			sb.WriteString(move(pos, tcell) + "[-]")
			sb.WriteString(move(tcell, anyMatch))
			sb.WriteString(copyCellStmt(anyMatch, tcell, pos+2))
			sb.WriteString(move(anyMatch, tcell))
			sb.WriteString(ifZeroStmt(tcell, pos+2, move(tcell, started)+"[-]+"+move(started, tcell)))
			sb.WriteString(move(tcell, pos))

		default:
			if t.Type == token.Int {
				panic(&symtab.SemanticError{Message: "cannot declare a variable directly inside a case; use a nested { } block or declare outside the switch"})
			}
			t1, t2, activeCell, ytest, scratch, scratch2 := pos+1, pos+2, pos+3, pos+4, pos+5, pos+6
			stmtCur := pos + 7

			sb.WriteString(move(pos, started))
			sb.WriteString(copyCellStmt(started, t1, scratch))
			sb.WriteString(move(started, broken))
			sb.WriteString(copyCellStmt(broken, t2, scratch))
			sb.WriteString(move(broken, t2))
			sb.WriteString(negateBoolStmt(t2, scratch))
			sb.WriteString(move(t2, t1))
			sb.WriteString(andBoolStmt(t1, t2, activeCell, ytest, scratch2))
			sb.WriteString("[-]" + move(t1, t2) + "[-]" + move(t2, activeCell))

			stmtCode := fc.CompileStatement(stmtCur)
			sb.WriteString(ifOnceStmt(activeCell, move(activeCell, stmtCur)+stmtCode+move(stmtCur, activeCell)))
			sb.WriteString(move(activeCell, pos))
		}
	}
	return sb.String()
}
