package compiler

import (
	"strconv"

	"github.com/nwillc/byteflow/ast"
	"github.com/nwillc/byteflow/parse"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// parseExpr parses the lowest-precedence expression form (ternary) and
// leaves the cursor just past it.
func (fc *FuncCompiler) parseExpr() ast.Node {
	return fc.parseTernary()
}

func (fc *FuncCompiler) parseTernary() ast.Node {
	cond := fc.parseOr()
	if t := fc.p.Current(); t != nil && t.Type == token.Ternary {
		fc.p.Advance()
		thenExpr := fc.parseExpr()
		fc.p.CheckCurrentIs(token.Colon)
		fc.p.Advance()
		elseExpr := fc.parseTernary()
		return &ast.Ternary{Cond: cond, Then: thenExpr, Else: elseExpr}
	}
	return cond
}

func (fc *FuncCompiler) parseOr() ast.Node {
	left := fc.parseAnd()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.Or {
			return left
		}
		fc.p.Advance()
		right := fc.parseAnd()
		left = &ast.Binary{Op: token.Or, Text: "||", Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseAnd() ast.Node {
	left := fc.parseBitOr()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.And {
			return left
		}
		fc.p.Advance()
		right := fc.parseBitOr()
		left = &ast.Binary{Op: token.And, Text: "&&", Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseBitOr() ast.Node {
	left := fc.parseBitXor()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.BitwiseOr {
			return left
		}
		fc.p.Advance()
		right := fc.parseBitXor()
		left = &ast.Binary{Op: token.BitwiseOr, Text: "|", Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseBitXor() ast.Node {
	left := fc.parseBitAnd()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.BitwiseXor {
			return left
		}
		fc.p.Advance()
		right := fc.parseBitAnd()
		left = &ast.Binary{Op: token.BitwiseXor, Text: "^", Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseBitAnd() ast.Node {
	left := fc.parseEquality()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.BitwiseAnd {
			return left
		}
		fc.p.Advance()
		right := fc.parseEquality()
		left = &ast.Binary{Op: token.BitwiseAnd, Text: "&", Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseEquality() ast.Node {
	left := fc.parseRelational()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.RelOp || (t.Data != "==" && t.Data != "!=") {
			return left
		}
		fc.p.Advance()
		right := fc.parseRelational()
		left = &ast.Binary{Op: token.RelOp, Text: t.Data, Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseRelational() ast.Node {
	left := fc.parseShift()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.RelOp {
			return left
		}
		switch t.Data {
		case "<", ">", "<=", ">=":
		default:
			return left
		}
		fc.p.Advance()
		right := fc.parseShift()
		left = &ast.Binary{Op: token.RelOp, Text: t.Data, Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseShift() ast.Node {
	left := fc.parseAdditive()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.BitwiseShift {
			return left
		}
		fc.p.Advance()
		right := fc.parseAdditive()
		left = &ast.Binary{Op: token.BitwiseShift, Text: t.Data, Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseAdditive() ast.Node {
	left := fc.parseMultiplicative()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.BinOp || (t.Data != "+" && t.Data != "-") {
			return left
		}
		fc.p.Advance()
		right := fc.parseMultiplicative()
		left = &ast.Binary{Op: token.BinOp, Text: t.Data, Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseMultiplicative() ast.Node {
	left := fc.parseUnary()
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.BinOp || (t.Data != "*" && t.Data != "/" && t.Data != "%") {
			return left
		}
		fc.p.Advance()
		right := fc.parseUnary()
		left = &ast.Binary{Op: token.BinOp, Text: t.Data, Left: left, Right: right}
	}
}

func (fc *FuncCompiler) parseUnary() ast.Node {
	t := fc.p.Current()
	if t == nil {
		panic(&parse.SyntaxError{Message: "unexpected end of input in expression"})
	}
	switch t.Type {
	case token.Not, token.BitwiseNot:
		fc.p.Advance()
		operand := fc.parseUnary()
		return &ast.UnaryPrefix{Op: t.Type, Text: t.Data, Operand: operand}
	case token.BinOp:
		if t.Data == "+" || t.Data == "-" {
			fc.p.Advance()
			operand := fc.parseUnary()
			if t.Data == "-" {
				return &ast.UnaryPrefix{Op: token.BinOp, Text: "-", Operand: operand}
			}
			return operand
		}
	case token.Increment, token.Decrement:
		fc.p.Advance()
		name := fc.p.Current()
		fc.p.CheckCurrentIs(token.ID)
		v, err := fc.env.Resolve(name.Data)
		if err != nil {
			panic(err)
		}
		fc.p.Advance()
		return &ast.UnaryPrefix{Op: t.Type, Var: v}
	}
	return fc.parsePostfix()
}

func (fc *FuncCompiler) parsePostfix() ast.Node {
	t := fc.p.Current()
	if t == nil {
		panic(&parse.SyntaxError{Message: "unexpected end of input in expression"})
	}

	switch t.Type {
	case token.Num:
		fc.p.Advance()
		n, _ := strconv.Atoi(t.Data)
		return &ast.Literal{Value: n}
	case token.Char:
		fc.p.Advance()
		return &ast.Literal{Value: int([]rune(t.Data)[0])}
	case token.True:
		fc.p.Advance()
		return &ast.Literal{Value: 1}
	case token.False:
		fc.p.Advance()
		return &ast.Literal{Value: 0}
	case token.LParen:
		fc.p.Advance()
		inner := fc.parseExpr()
		fc.p.CheckCurrentIs(token.RParen)
		fc.p.Advance()
		return inner
	case token.ID:
		return fc.parseIdentifierExpr()
	}
	panic(&parse.SyntaxError{Token: *t, Message: "expected expression"})
}

func (fc *FuncCompiler) parseIdentifierExpr() ast.Node {
	name := fc.p.Current()
	fc.p.Advance()

	if next := fc.p.Current(); next != nil && next.Type == token.LParen {
		return fc.parseCall(name.Data)
	}

	v, err := fc.env.Resolve(name.Data)
	if err != nil {
		panic(err)
	}

	if next := fc.p.Current(); next != nil && next.Type == token.LBrack {
		return fc.parseArrayAccess(v)
	}

	if next := fc.p.Current(); next != nil && (next.Type == token.Increment || next.Type == token.Decrement) {
		inc := next.Type == token.Increment
		fc.p.Advance()
		return &ast.UnaryPostfix{Inc: inc, Var: v}
	}

	if next := fc.p.Current(); next != nil && next.Type == token.Assign {
		return fc.parseAssign(v, nil)
	}

	return &ast.Identifier{Var: v}
}

// parseArrayAccess parses one or more "[ expr ]" index suffixes against
// v, linearizing multi-dimensional indices into a single runtime index
// expression (idx0*dim1*dim2... + idx1*dim2... + ...), then, if
// followed by '=' or a compound-assign operator, folds in an ArraySet.
func (fc *FuncCompiler) parseArrayAccess(v *symtab.Variable) ast.Node {
	var indices []ast.Node
	for {
		t := fc.p.Current()
		if t == nil || t.Type != token.LBrack {
			break
		}
		fc.p.Advance()
		indices = append(indices, fc.parseExpr())
		fc.p.CheckCurrentIs(token.RBrack)
		fc.p.Advance()
	}
	if len(indices) != len(v.Dims) {
		panic(&symtab.SemanticError{Message: "array " + v.Name + " needs " + strconv.Itoa(len(v.Dims)) + " indices, got " + strconv.Itoa(len(indices))})
	}
	index := linearizeIndex(v.Dims, indices)

	if t := fc.p.Current(); t != nil && t.Type == token.Assign {
		fc.p.Advance()
		valueExpr := fc.parseExpr()
		if t.Data != "=" {
			valueExpr = &ast.Binary{
				Op: assignBinOpKind(t.Data), Text: assignBinOpText(t.Data),
				Left: &ast.ArrayGet{Var: v, Index: index}, Right: valueExpr,
			}
		}
		return &ast.ArraySet{Var: v, Index: index, Value: valueExpr}
	}
	return &ast.ArrayGet{Var: v, Index: index}
}

func (fc *FuncCompiler) parseAssign(v *symtab.Variable, _ ast.Node) ast.Node {
	opTok := fc.p.Current()
	fc.p.Advance()
	valueExpr := fc.parseExpr()
	if opTok.Data != "=" {
		valueExpr = &ast.Binary{
			Op: assignBinOpKind(opTok.Data), Text: assignBinOpText(opTok.Data),
			Left: &ast.Identifier{Var: v}, Right: valueExpr,
		}
	}
	return &ast.Assign{Var: v, Value: valueExpr}
}

// assignBinOpKind/assignBinOpText map a compound-assignment operator's
// text (e.g. "+=") to the token.Kind and operator text its desugared
// binary expression (e.g. "+") needs.
func assignBinOpKind(op string) token.Kind {
	switch op[:len(op)-1] {
	case "+", "-", "*", "/", "%":
		return token.BinOp
	case "&":
		return token.BitwiseAnd
	case "|":
		return token.BitwiseOr
	case "^":
		return token.BitwiseXor
	case "<<", ">>":
		return token.BitwiseShift
	}
	panic(&parse.SyntaxError{Message: "unknown compound-assignment operator " + op})
}

func assignBinOpText(op string) string {
	return op[:len(op)-1]
}

func (fc *FuncCompiler) parseCall(name string) ast.Node {
	fc.p.CheckCurrentIs(token.LParen)
	lparen := fc.p.CurrentIndex
	rparen := fc.p.FindMatching(lparen)
	fc.p.Advance()

	def, ok := fc.prog.Funcs[name]
	if !ok {
		panic(&parse.SyntaxError{Message: "call to undefined function " + name})
	}

	var args []ast.Node
	for fc.p.CurrentIndex < rparen {
		args = append(args, fc.parseExpr())
		if t := fc.p.Current(); t != nil && t.Type == token.Comma {
			fc.p.Advance()
		}
	}
	if len(args) != def.ParamCount() {
		panic(&parse.SyntaxError{Message: "call to " + name + " passes the wrong number of arguments"})
	}
	fc.p.AdvanceTo(rparen + 1)
	return &ast.Call{Callee: def.Instantiate(), Args: args}
}

// linearizeIndex folds one or more index expressions against a
// variable's declared dimensions into the single runtime index
// ArrayGet/ArraySet expects, building the row-major place-value
// multiplications as ordinary runtime Binary nodes.
func linearizeIndex(dims []int, indices []ast.Node) ast.Node {
	if len(indices) == 1 {
		return indices[0]
	}
	var result ast.Node
	for i, idx := range indices {
		term := idx
		for _, d := range dims[i+1:] {
			term = &ast.Binary{Op: token.BinOp, Text: "*", Left: term, Right: &ast.Literal{Value: d}}
		}
		if result == nil {
			result = term
		} else {
			result = &ast.Binary{Op: token.BinOp, Text: "+", Left: result, Right: term}
		}
	}
	return result
}
