package codegen

import (
	"testing"

	"github.com/skx/cc-subset-amd64/lexer"
	"github.com/skx/cc-subset-amd64/parser"
	"github.com/skx/cc-subset-amd64/resolver"
	"github.com/skx/cc-subset-amd64/tacky"
)

func pipeline(t *testing.T, src string) *Function {
	t.Helper()
	prog, err := parser.Parse(lexer.New(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	resolved, err := resolver.Resolve(prog)
	if err != nil {
		t.Fatalf("unexpected resolve error: %s", err)
	}
	tac, err := tacky.Emit(resolved)
	if err != nil {
		t.Fatalf("unexpected tackify error: %s", err)
	}
	selected, err := Select(tac)
	if err != nil {
		t.Fatalf("unexpected select error for %q: %s", src, err)
	}
	return Legalize(Allocate(selected))
}

func TestAllocateInsertsFrameAtIndexZero(t *testing.T) {
	fn := pipeline(t, "int main(void) { int a; int b; return a; }")
	if len(fn.Instructions) == 0 {
		t.Fatalf("expected a non-empty instruction list")
	}
	if _, ok := fn.Instructions[0].(*AllocateStack); !ok {
		t.Fatalf("expected AllocateStack at index 0, got %T", fn.Instructions[0])
	}
}

// Frame size is 4 bytes per distinct pseudo-name encountered, one for
// each of the two declared variables plus any temps.
func TestFrameSizeIsMultipleOfFour(t *testing.T) {
	fn := pipeline(t, "int main(void) { int a; int b; a = a + b; return a; }")
	alloc := fn.Instructions[0].(*AllocateStack)
	if alloc.Size == 0 || alloc.Size%4 != 0 {
		t.Fatalf("expected a positive multiple of 4, got %d", alloc.Size)
	}
}

// After legalization, no Mov/plain-binary instruction has two Stack
// operands, IDiv never takes an Imm operand, Mult never targets Stack,
// and Cmp never has an Imm second operand nor two Stack operands.
func TestPostLegalizationInvariants(t *testing.T) {
	sources := []string{
		"int main(void) { int a; int b; a = a + b; return a; }",
		"int main(void) { int a; int b; return a * b; }",
		"int main(void) { int a; return a / 3; }",
		"int main(void) { int a; int b; return a < b; }",
		"int main(void) { return 1 << 3 | 1; }",
	}

	for _, src := range sources {
		fn := pipeline(t, src)
		for _, instr := range fn.Instructions {
			switch in := instr.(type) {
			case *Mov:
				if isStack(in.Src) && isStack(in.Dst) {
					t.Errorf("%q: Mov has two Stack operands", src)
				}
			case *Binary:
				if (in.Op == Add || in.Op == Sub || in.Op == BitAnd || in.Op == BitOr || in.Op == BitXOr) &&
					isStack(in.Src) && isStack(in.Dst) {
					t.Errorf("%q: Binary(%v) has two Stack operands", src, in.Op)
				}
				if in.Op == Mult && isStack(in.Dst) {
					t.Errorf("%q: Mult has a Stack destination", src)
				}
			case *IDiv:
				if isImm(in.Src) {
					t.Errorf("%q: IDiv has an Imm operand", src)
				}
			case *Cmp:
				if isImm(in.Rhs) {
					t.Errorf("%q: Cmp has an Imm second operand", src)
				}
				if isStack(in.Lhs) && isStack(in.Rhs) {
					t.Errorf("%q: Cmp has two Stack operands", src)
				}
			}
		}
	}
}

func TestNoPseudoSurvivesAllocation(t *testing.T) {
	fn := pipeline(t, "int main(void) { int a; int b; return a + b; }")
	for _, instr := range fn.Instructions {
		walkOperands(instr, func(op Operand) {
			if _, ok := op.(Pseudo); ok {
				t.Fatalf("found un-allocated Pseudo after Allocate/Legalize: %#v", instr)
			}
		})
	}
}

func walkOperands(instr Instr, visit func(Operand)) {
	switch in := instr.(type) {
	case *Mov:
		visit(in.Src)
		visit(in.Dst)
	case *Unary:
		visit(in.Dst)
	case *Binary:
		visit(in.Src)
		visit(in.Dst)
	case *IDiv:
		visit(in.Src)
	case *Cmp:
		visit(in.Lhs)
		visit(in.Rhs)
	case *SetCC:
		visit(in.Dst)
	}
}
