// Package token defines the tagged token value that flows from the lexer
// through the parser facade into the code generator.
package token

import "fmt"

// Kind tags the grammatical category of a Token.
type Kind int

const (
	Invalid Kind = iota

	// keywords
	Void
	Int
	If
	Else
	While
	Do
	For
	Switch
	Case
	Default
	Break
	Return
	True
	False
	Print

	// literals and identifiers
	ID
	Num
	Char
	String

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBrack
	RBrack
	Semicolon
	Comma
	Colon

	// operators
	Assign     // = += -= *= /= %= <<= >>= &= |= ^=
	BinOp      // + - * / %
	RelOp      // == != < > <= >=
	Not        // !
	BitwiseNot // ~
	BitwiseAnd // &
	BitwiseOr  // |
	BitwiseXor // ^
	BitwiseShift
	And // &&
	Or  // ||
	Increment
	Decrement
	Ternary // ?
)

var kindNames = map[Kind]string{
	Invalid: "INVALID", Void: "VOID", Int: "INT", If: "IF", Else: "ELSE",
	While: "WHILE", Do: "DO", For: "FOR", Switch: "SWITCH", Case: "CASE",
	Default: "DEFAULT", Break: "BREAK", Return: "RETURN", True: "TRUE",
	False: "FALSE", Print: "PRINT", ID: "ID", Num: "NUM", Char: "CHAR",
	String: "STRING", LParen: "LPAREN", RParen: "RPAREN", LBrace: "LBRACE",
	RBrace: "RBRACE", LBrack: "LBRACK", RBrack: "RBRACK", Semicolon: "SEMICOLON",
	Comma: "COMMA", Colon: "COLON", Assign: "ASSIGN", BinOp: "BINOP",
	RelOp: "RELOP", Not: "NOT", BitwiseNot: "BITWISE_NOT", BitwiseAnd: "BITWISE_AND",
	BitwiseOr: "BITWISE_OR", BitwiseXor: "BITWISE_XOR", BitwiseShift: "BITWISE_SHIFT",
	And: "AND", Or: "OR", Increment: "INCREMENT", Decrement: "DECREMENT",
	Ternary: "TERNARY",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexed unit: its kind, its source position, and (for
// identifiers and literals) its textual payload.
type Token struct {
	Type   Kind
	Line   int
	Column int
	Data   string
}

func New(kind Kind, line, col int, data string) Token {
	return Token{Type: kind, Line: line, Column: col, Data: data}
}

func (t Token) String() string {
	if t.Data != "" {
		return fmt.Sprintf("%v(%q)@%d:%d", t.Type, t.Data, t.Line, t.Column)
	}
	return fmt.Sprintf("%v@%d:%d", t.Type, t.Line, t.Column)
}

// Keywords maps reserved words to their Kind.
var Keywords = map[string]Kind{
	"void": Void, "int": Int, "if": If, "else": Else, "while": While,
	"do": Do, "for": For, "switch": Switch, "case": Case, "default": Default,
	"break": Break, "return": Return, "true": True, "false": False, "print": Print,
}

// IsLiteral reports whether t is a NUM, CHAR, TRUE or FALSE token -- the set
// of tokens that can appear directly as a compile-time constant value (e.g.
// a switch-case label or a global-variable scalar initializer).
func IsLiteral(t Token) bool {
	switch t.Type {
	case Num, Char, True, False:
		return true
	}
	return false
}
