// Package parser builds an AST from a token stream using recursive
// descent with precedence climbing, per the grammar:
//
//	program     := "int" IDENT "(" "void" ")" "{" {block_item} "}"
//	block_item  := declaration | statement
//	declaration := "int" IDENT ["=" expression] ";"
//	statement   := "return" expression ";" | expression ";" | ";"
//	expression(p) :=
//	    factor
//	    { while next is binary-op and prec(next) >= p:
//	        if next is "=":        rhs = expression(prec(next));       lhs = Assign(lhs, rhs)
//	        elif next is compound: rhs = expression(prec(next));       lhs = Compound(op, lhs, rhs)
//	        else:                  rhs = expression(prec(next) + 1);   lhs = Binary(op, lhs, rhs) }
//	factor      := INT | "(" expression ")" | unary factor | IDENT
//
// Every binary operator is left-associative except assignment and
// compound assignment, which are right-associative: that's encoded by
// recursing at the same precedence (prec(next)) instead of one higher.
package parser

import (
	"fmt"

	"github.com/skx/cc-subset-amd64/ast"
	"github.com/skx/cc-subset-amd64/instructions"
	"github.com/skx/cc-subset-amd64/lexer"
	"github.com/skx/cc-subset-amd64/token"
)

// Error is returned for any grammar violation: token mismatch,
// unexpected end of input, an integer literal out of int32 range, or
// trailing tokens after the function body.
type Error struct {
	Detail string
}

func (e *Error) Error() string {
	return "parse error: " + e.Detail
}

func errorf(format string, args ...any) error {
	return &Error{Detail: fmt.Sprintf(format, args...)}
}

// precedence, lowest to highest. Assignment/compound-assignment sit at
// the bottom; unary/postfix binds tightest and is handled directly by
// factor rather than appearing in this table.
const (
	lowest = iota
	precAssign
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

var binaryPrecedence = map[token.Type]int{
	token.ASSIGN:    precAssign,
	token.PLUSEQ:    precAssign,
	token.MINUSEQ:   precAssign,
	token.STAREQ:    precAssign,
	token.SLASHEQ:   precAssign,
	token.PERCENTEQ: precAssign,
	token.ANDEQ:     precAssign,
	token.OREQ:      precAssign,
	token.CARETEQ:   precAssign,
	token.SHLEQ:     precAssign,
	token.SHREQ:     precAssign,

	token.OROR:   precLogicalOr,
	token.ANDAND: precLogicalAnd,

	token.PIPE:  precBitOr,
	token.CARET: precBitXor,

	token.AMPERSAND: precBitAnd,

	token.EQ:    precEquality,
	token.NOTEQ: precEquality,

	token.LANGLE: precRelational,
	token.LE:     precRelational,
	token.RANGLE: precRelational,
	token.GE:     precRelational,

	token.SHL: precShift,
	token.SHR: precShift,

	token.PLUS:  precAdditive,
	token.MINUS: precAdditive,

	token.ASTERISK: precMultiplicative,
	token.SLASH:    precMultiplicative,
	token.PERCENT:  precMultiplicative,
}

// compoundOps maps a compound-assignment token to the BinaryOp it
// performs before storing the result back into its left-hand Var.
var compoundOps = map[token.Type]instructions.BinaryOp{
	token.PLUSEQ:    instructions.Add,
	token.MINUSEQ:   instructions.Subtract,
	token.STAREQ:    instructions.Multiply,
	token.SLASHEQ:   instructions.Divide,
	token.PERCENTEQ: instructions.Remainder,
	token.ANDEQ:     instructions.BitAnd,
	token.OREQ:      instructions.BitOr,
	token.CARETEQ:   instructions.BitXor,
	token.SHLEQ:     instructions.ShiftLeft,
	token.SHREQ:     instructions.ShiftRight,
}

// binaryOps maps a plain binary-operator token to its BinaryOp.
var binaryOps = map[token.Type]instructions.BinaryOp{
	token.PLUS:      instructions.Add,
	token.MINUS:     instructions.Subtract,
	token.ASTERISK:  instructions.Multiply,
	token.SLASH:     instructions.Divide,
	token.PERCENT:   instructions.Remainder,
	token.AMPERSAND: instructions.BitAnd,
	token.PIPE:      instructions.BitOr,
	token.CARET:     instructions.BitXor,
	token.SHL:       instructions.ShiftLeft,
	token.SHR:       instructions.ShiftRight,
	token.ANDAND:    instructions.And,
	token.OROR:      instructions.Or,
	token.EQ:        instructions.Equal,
	token.NOTEQ:     instructions.NotEqual,
	token.LANGLE:    instructions.LessThan,
	token.LE:        instructions.LessOrEqual,
	token.RANGLE:    instructions.GreaterThan,
	token.GE:        instructions.GreaterOrEqual,
}

var unaryOps = map[token.Type]instructions.UnaryOp{
	token.TILDE: instructions.Complement,
	token.MINUS: instructions.Negate,
	token.BANG:  instructions.Not,
}

// Parser holds our object-state: the lexer, and one token of lookahead.
type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
}

// New creates a Parser over the given lexer, priming both the current
// and lookahead tokens.
func New(l *lexer.Lexer) (*Parser, error) {
	p := &Parser{l: l}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.curToken = p.peekToken
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.peekToken = tok
	return nil
}

func (p *Parser) expect(tt token.Type) error {
	if p.curToken.Type != tt {
		return errorf("expected %q, got %q (%q)", tt, p.curToken.Type, p.curToken.Literal)
	}
	return p.advance()
}

// Parse runs the whole grammar over the token stream and returns the
// Program, or a fatal *Error on any mismatch.
func Parse(l *lexer.Lexer) (*ast.Program, error) {
	p, err := New(l)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	fn, err := p.parseFunction()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != token.EOF {
		return nil, errorf("unexpected trailing token %q after function body", p.curToken.Literal)
	}
	return &ast.Program{Function: fn}, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	if err := p.expect(token.INT); err != nil {
		return nil, err
	}
	if p.curToken.Type != token.IDENT {
		return nil, errorf("expected function name, got %q", p.curToken.Literal)
	}
	name := p.curToken.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if err := p.expect(token.VOID); err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var body []ast.BlockItem
	for p.curToken.Type != token.RBRACE {
		if p.curToken.Type == token.EOF {
			return nil, errorf("unexpected end of input, expected '}'")
		}
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	return &ast.Function{Name: name, Body: body}, nil
}

func (p *Parser) parseBlockItem() (ast.BlockItem, error) {
	if p.curToken.Type == token.INT {
		return p.parseDeclaration()
	}
	return p.parseStatement()
}

func (p *Parser) parseDeclaration() (ast.BlockItem, error) {
	if err := p.expect(token.INT); err != nil {
		return nil, err
	}
	if p.curToken.Type != token.IDENT {
		return nil, errorf("expected identifier in declaration, got %q", p.curToken.Literal)
	}
	name := p.curToken.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}

	var init ast.Expression
	if p.curToken.Type == token.ASSIGN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpression(lowest + 1)
		if err != nil {
			return nil, err
		}
		init = e
	}
	if err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Declaration{Name: name, Init: init}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken.Type {
	case token.SEMICOLON:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Null{}, nil

	case token.RETURN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpression(lowest + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Return{Value: e}, nil

	default:
		e, err := p.parseExpression(lowest + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.ExprStatement{Value: e}, nil
	}
}

// parseExpression implements the precedence-climbing loop. minPrec is
// the lowest precedence this call is willing to consume.
func (p *Parser) parseExpression(minPrec int) (ast.Expression, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		prec, ok := binaryPrecedence[p.curToken.Type]
		if !ok || prec < minPrec {
			break
		}

		opTok := p.curToken.Type

		if opTok == token.ASSIGN {
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseExpression(prec)
			if err != nil {
				return nil, err
			}
			left = &ast.Assign{Left: left, Right: right}
			continue
		}

		if op, ok := compoundOps[opTok]; ok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseExpression(prec)
			if err != nil {
				return nil, err
			}
			left = &ast.Compound{Op: op, Left: left, Right: right}
			continue
		}

		op, ok := binaryOps[opTok]
		if !ok {
			return nil, errorf("internal: token %q has a precedence but no BinaryOp mapping", opTok)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	switch p.curToken.Type {
	case token.NUMBER:
		n, err := parseInt32(p.curToken.Literal)
		if err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Constant{Value: n}, nil

	case token.IDENT:
		name := p.curToken.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Var{Name: name}, nil

	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpression(lowest + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil

	case token.TILDE, token.MINUS, token.BANG:
		op := unaryOps[p.curToken.Type]
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Operand: operand}, nil

	default:
		return nil, errorf("expected an expression, got %q (%q)", p.curToken.Type, p.curToken.Literal)
	}
}

// parseInt32 converts a decimal digit-string to an int32, failing
// fatally on overflow; there are no arbitrary-precision literals here.
func parseInt32(digits string) (int32, error) {
	var v int64
	for _, r := range digits {
		v = v*10 + int64(r-'0')
		if v > (1<<31)-1 {
			return 0, errorf("integer literal %q overflows int32", digits)
		}
	}
	return int32(v), nil
}
