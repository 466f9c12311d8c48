package tacky

import (
	"fmt"

	"github.com/skx/cc-subset-amd64/ast"
	"github.com/skx/cc-subset-amd64/instructions"
	"github.com/skx/cc-subset-amd64/internal/ir"
)

// Emit lowers a resolved AST into a linear TAC program, appending an
// implicit "return 0" so a function missing an explicit return still
// produces a well-formed exit.
func Emit(prog *ast.Program) (*Function, error) {
	e := &emitter{}

	for _, item := range prog.Function.Body {
		if err := e.emitBlockItem(item); err != nil {
			return nil, err
		}
	}

	e.append(&Return{Value: &Constant{Value: 0}})

	return &Function{Name: prog.Function.Name, Instructions: e.instructions}, nil
}

// emitter holds our object-state: the running temp/label counters and
// the growing instruction buffer. This state is pass-local; nothing
// here survives past a single call to Emit.
type emitter struct {
	tempCounter  int
	labelCounter int
	instructions []Instr
}

func (e *emitter) append(instr Instr) {
	e.instructions = append(e.instructions, instr)
}

func (e *emitter) newTemp() *Var {
	e.tempCounter++
	return &Var{Name: fmt.Sprintf("tmp.%d", e.tempCounter)}
}

func (e *emitter) newLabel(prefix string) string {
	e.labelCounter++
	return fmt.Sprintf("%s.%d", prefix, e.labelCounter)
}

func (e *emitter) emitBlockItem(item ast.BlockItem) error {
	switch it := item.(type) {
	case *ast.Declaration:
		return e.emitDeclaration(it)
	case ast.Statement:
		return e.emitStatement(it)
	default:
		return ir.Unreachablef("tacky", "unhandled block item %T", item)
	}
}

func (e *emitter) emitDeclaration(decl *ast.Declaration) error {
	if decl.Init == nil {
		return nil
	}
	v, err := e.emitExpr(decl.Init)
	if err != nil {
		return err
	}
	e.append(&Copy{Src: v, Dst: &Var{Name: decl.Name}})
	return nil
}

func (e *emitter) emitStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Return:
		v, err := e.emitExpr(s.Value)
		if err != nil {
			return err
		}
		e.append(&Return{Value: v})
		return nil

	case *ast.ExprStatement:
		_, err := e.emitExpr(s.Value)
		return err

	case *ast.Null:
		return nil

	default:
		return ir.Unreachablef("tacky", "unhandled statement %T", stmt)
	}
}

// emitExpr lowers expr, appending whatever instructions are needed and
// returning the Val that names its result.
func (e *emitter) emitExpr(expr ast.Expression) (Val, error) {
	switch ex := expr.(type) {
	case *ast.Constant:
		return &Constant{Value: ex.Value}, nil

	case *ast.Var:
		return &Var{Name: ex.Name}, nil

	case *ast.Unary:
		return e.emitUnary(ex)

	case *ast.Binary:
		if ex.Op == instructions.And {
			return e.emitAnd(ex)
		}
		if ex.Op == instructions.Or {
			return e.emitOr(ex)
		}
		return e.emitBinary(ex)

	case *ast.Assign:
		return e.emitAssign(ex)

	case *ast.Compound:
		return e.emitCompound(ex)

	default:
		return nil, ir.Unreachablef("tacky", "unhandled expression %T", expr)
	}
}

func (e *emitter) emitUnary(ex *ast.Unary) (Val, error) {
	src, err := e.emitExpr(ex.Operand)
	if err != nil {
		return nil, err
	}
	dst := e.newTemp()
	e.append(&Unary{Op: ex.Op, Src: src, Dst: dst})
	return dst, nil
}

// emitBinary lowers every binary operator except the short-circuit
// "&&"/"||" pair, which are handled separately below. Evaluation order
// is left-then-right.
func (e *emitter) emitBinary(ex *ast.Binary) (Val, error) {
	left, err := e.emitExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.emitExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	dst := e.newTemp()
	e.append(&Binary{Op: ex.Op, Src1: left, Src2: right, Dst: dst})
	return dst, nil
}

// emitAnd lowers "a && b" to control flow: the right side is only
// evaluated when the left side is non-zero, and the result is 1 only
// when both sides are non-zero.
func (e *emitter) emitAnd(ex *ast.Binary) (Val, error) {
	falseLabel := e.newLabel("and_false")
	endLabel := e.newLabel("and_end")
	result := e.newTemp()

	left, err := e.emitExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	e.append(&JumpIfZero{Cond: left, Target: falseLabel})

	right, err := e.emitExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	e.append(&JumpIfZero{Cond: right, Target: falseLabel})

	e.append(&Copy{Src: &Constant{Value: 1}, Dst: result})
	e.append(&Jump{Target: endLabel})
	e.append(&Label{Name: falseLabel})
	e.append(&Copy{Src: &Constant{Value: 0}, Dst: result})
	e.append(&Label{Name: endLabel})

	return result, nil
}

// emitOr lowers "a || b" to control flow: the right side is only
// evaluated when the left side is zero, and the result is 0 only when
// both sides are zero.
func (e *emitter) emitOr(ex *ast.Binary) (Val, error) {
	trueLabel := e.newLabel("or_true")
	endLabel := e.newLabel("or_end")
	result := e.newTemp()

	left, err := e.emitExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	e.append(&JumpIfNotZero{Cond: left, Target: trueLabel})

	right, err := e.emitExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	e.append(&JumpIfNotZero{Cond: right, Target: trueLabel})

	e.append(&Copy{Src: &Constant{Value: 0}, Dst: result})
	e.append(&Jump{Target: endLabel})
	e.append(&Label{Name: trueLabel})
	e.append(&Copy{Src: &Constant{Value: 1}, Dst: result})
	e.append(&Label{Name: endLabel})

	return result, nil
}

// emitAssign lowers "x = e": evaluate the right side first, then
// store into the left Var. The resolver guarantees Left is a *ast.Var.
func (e *emitter) emitAssign(ex *ast.Assign) (Val, error) {
	target, ok := ex.Left.(*ast.Var)
	if !ok {
		return nil, ir.Unreachablef("tacky", "assign target %T is not a resolved Var", ex.Left)
	}
	v, err := e.emitExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	dst := &Var{Name: target.Name}
	e.append(&Copy{Src: v, Dst: dst})
	return dst, nil
}

// emitCompound lowers "x op= e": evaluate x and e, combine with a
// Binary into a temp, then copy the temp back into x.
func (e *emitter) emitCompound(ex *ast.Compound) (Val, error) {
	target, ok := ex.Left.(*ast.Var)
	if !ok {
		return nil, ir.Unreachablef("tacky", "compound-assign target %T is not a resolved Var", ex.Left)
	}
	v1 := &Var{Name: target.Name}
	v2, err := e.emitExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	tmp := e.newTemp()
	e.append(&Binary{Op: ex.Op, Src1: v1, Src2: v2, Dst: tmp})
	dst := &Var{Name: target.Name}
	e.append(&Copy{Src: tmp, Dst: dst})
	return dst, nil
}
