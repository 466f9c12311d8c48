package parser

import (
	"testing"

	"github.com/skx/cc-subset-amd64/ast"
	"github.com/skx/cc-subset-amd64/instructions"
	"github.com/skx/cc-subset-amd64/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(lexer.New(src))
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %s", src, err)
	}
	return prog
}

func TestParseMinimalFunction(t *testing.T) {
	prog := parse(t, "int main(void) { return 2; }")

	if prog.Function.Name != "main" {
		t.Fatalf("expected function name 'main', got %q", prog.Function.Name)
	}
	if len(prog.Function.Body) != 1 {
		t.Fatalf("expected one block item, got %d", len(prog.Function.Body))
	}
	ret, ok := prog.Function.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", prog.Function.Body[0])
	}
	c, ok := ret.Value.(*ast.Constant)
	if !ok || c.Value != 2 {
		t.Fatalf("expected Constant(2), got %#v", ret.Value)
	}
}

func TestPrecedenceDiffersBindsTighter(t *testing.T) {
	// "1 + 2 * 3" - multiplicative binds tighter than additive, so
	// this must parse as Binary(+, 1, Binary(*, 2, 3)).
	prog := parse(t, "int main(void) { return 1 + 2 * 3; }")
	ret := prog.Function.Body[0].(*ast.Return)
	top, ok := ret.Value.(*ast.Binary)
	if !ok || top.Op != instructions.Add {
		t.Fatalf("expected top-level Add, got %#v", ret.Value)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != instructions.Multiply {
		t.Fatalf("expected right operand to be Multiply, got %#v", top.Right)
	}
}

func TestLeftAssociativeEqualPrecedence(t *testing.T) {
	// "1 - 2 - 3" is left-associative: Binary(-, Binary(-, 1, 2), 3).
	prog := parse(t, "int main(void) { return 1 - 2 - 3; }")
	ret := prog.Function.Body[0].(*ast.Return)
	top, ok := ret.Value.(*ast.Binary)
	if !ok || top.Op != instructions.Subtract {
		t.Fatalf("expected top-level Subtract, got %#v", ret.Value)
	}
	left, ok := top.Left.(*ast.Binary)
	if !ok || left.Op != instructions.Subtract {
		t.Fatalf("expected left operand to be Subtract, got %#v", top.Left)
	}
	if _, ok := top.Right.(*ast.Constant); !ok {
		t.Fatalf("expected right operand to be a Constant, got %#v", top.Right)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	// "a = b = c" must parse as Assign(a, Assign(b, c)).
	prog := parse(t, "int main(void) { int a; int b; int c; a = b = c; return a; }")
	stmt := prog.Function.Body[3].(*ast.ExprStatement)
	outer, ok := stmt.Value.(*ast.Assign)
	if !ok {
		t.Fatalf("expected outer Assign, got %#v", stmt.Value)
	}
	if _, ok := outer.Right.(*ast.Assign); !ok {
		t.Fatalf("expected right-hand side to be a nested Assign, got %#v", outer.Right)
	}
}

func TestCompoundAssignmentParses(t *testing.T) {
	prog := parse(t, "int main(void) { int a; a += 4; return a; }")
	stmt := prog.Function.Body[1].(*ast.ExprStatement)
	c, ok := stmt.Value.(*ast.Compound)
	if !ok || c.Op != instructions.Add {
		t.Fatalf("expected Compound(+), got %#v", stmt.Value)
	}
}

func TestIntegerOverflowIsFatal(t *testing.T) {
	_, err := Parse(lexer.New("int main(void) { return 9999999999; }"))
	if err == nil {
		t.Fatalf("expected overflow error, got none")
	}
}

func TestAssignToConstantIsRejectedByGrammarShapeLater(t *testing.T) {
	// The parser happily builds Assign(Constant(3), Var(x)); rejecting
	// it as a non-lvalue is the resolver's job, not the parser's.
	prog := parse(t, "int main(void) { int x; 3 = x; return x; }")
	stmt := prog.Function.Body[1].(*ast.ExprStatement)
	a, ok := stmt.Value.(*ast.Assign)
	if !ok {
		t.Fatalf("expected an Assign node, got %#v", stmt.Value)
	}
	if _, ok := a.Left.(*ast.Constant); !ok {
		t.Fatalf("expected left side to be a Constant, got %#v", a.Left)
	}
}

func TestTrailingTokensRejected(t *testing.T) {
	_, err := Parse(lexer.New("int main(void) { return 1; } garbage"))
	if err == nil {
		t.Fatalf("expected trailing-token error, got none")
	}
}

func TestMissingSemicolonRejected(t *testing.T) {
	_, err := Parse(lexer.New("int main(void) { return 1"))
	if err == nil {
		t.Fatalf("expected error for unterminated return, got none")
	}
}

func TestUnaryPrefixNesting(t *testing.T) {
	prog := parse(t, "int main(void) { return -(~5); }")
	ret := prog.Function.Body[0].(*ast.Return)
	neg, ok := ret.Value.(*ast.Unary)
	if !ok || neg.Op != instructions.Negate {
		t.Fatalf("expected outer Negate, got %#v", ret.Value)
	}
	if _, ok := neg.Operand.(*ast.Unary); !ok {
		t.Fatalf("expected nested Unary, got %#v", neg.Operand)
	}
}
