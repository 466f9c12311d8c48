package codegen

import (
	"github.com/skx/cc-subset-amd64/instructions"
	"github.com/skx/cc-subset-amd64/internal/ir"
	"github.com/skx/cc-subset-amd64/tacky"
)

// Select translates a TAC function into pseudo-assembly: every
// Var becomes a Pseudo, every Constant an Imm, and each TAC
// instruction expands to its fixed sequence of target instructions.
func Select(fn *tacky.Function) (*Function, error) {
	s := &selector{}
	for _, instr := range fn.Instructions {
		if err := s.selectInstr(instr); err != nil {
			return nil, err
		}
	}
	return &Function{Name: fn.Name, Instructions: s.out}, nil
}

type selector struct {
	out []Instr
}

func (s *selector) emit(i Instr) {
	s.out = append(s.out, i)
}

func selectVal(v tacky.Val) (Operand, error) {
	switch val := v.(type) {
	case *tacky.Constant:
		return Imm{Value: val.Value}, nil
	case *tacky.Var:
		return Pseudo{Name: val.Name}, nil
	default:
		return nil, ir.Unreachablef("codegen", "unhandled TAC value %T", v)
	}
}

func (s *selector) selectInstr(instr tacky.Instr) error {
	switch in := instr.(type) {
	case *tacky.Return:
		v, err := selectVal(in.Value)
		if err != nil {
			return err
		}
		s.emit(&Mov{Src: v, Dst: Register{Reg: AX}})
		s.emit(&Ret{})
		return nil

	case *tacky.Copy:
		src, err := selectVal(in.Src)
		if err != nil {
			return err
		}
		s.emit(&Mov{Src: src, Dst: Pseudo{Name: in.Dst.Name}})
		return nil

	case *tacky.Jump:
		s.emit(&Jmp{Target: in.Target})
		return nil

	case *tacky.Label:
		s.emit(&Label{Name: in.Name})
		return nil

	case *tacky.JumpIfZero:
		v, err := selectVal(in.Cond)
		if err != nil {
			return err
		}
		s.emit(&Cmp{Lhs: Imm{Value: 0}, Rhs: v})
		s.emit(&JmpCC{Cond: CondE, Target: in.Target})
		return nil

	case *tacky.JumpIfNotZero:
		v, err := selectVal(in.Cond)
		if err != nil {
			return err
		}
		s.emit(&Cmp{Lhs: Imm{Value: 0}, Rhs: v})
		s.emit(&JmpCC{Cond: CondNE, Target: in.Target})
		return nil

	case *tacky.Unary:
		return s.selectUnary(in)

	case *tacky.Binary:
		return s.selectBinary(in)

	default:
		return ir.Unreachablef("codegen", "unhandled TAC instruction %T", instr)
	}
}

func (s *selector) selectUnary(in *tacky.Unary) error {
	dst := Pseudo{Name: in.Dst.Name}
	src, err := selectVal(in.Src)
	if err != nil {
		return err
	}

	if in.Op == instructions.Not {
		s.emit(&Cmp{Lhs: Imm{Value: 0}, Rhs: src})
		s.emit(&Mov{Src: Imm{Value: 0}, Dst: dst})
		s.emit(&SetCC{Cond: CondE, Dst: dst})
		return nil
	}

	s.emit(&Mov{Src: src, Dst: dst})
	var op UnaryOp
	switch in.Op {
	case instructions.Complement:
		op = Not
	case instructions.Negate:
		op = Neg
	default:
		return ir.Unreachablef("codegen", "unhandled unary operator %v", in.Op)
	}
	s.emit(&Unary{Op: op, Dst: dst})
	return nil
}

func (s *selector) selectBinary(in *tacky.Binary) error {
	dst := Pseudo{Name: in.Dst.Name}
	a, err := selectVal(in.Src1)
	if err != nil {
		return err
	}
	b, err := selectVal(in.Src2)
	if err != nil {
		return err
	}

	switch {
	case in.Op == instructions.Divide:
		s.emit(&Mov{Src: a, Dst: Register{Reg: AX}})
		s.emit(&Cdq{})
		s.emit(&IDiv{Src: b})
		s.emit(&Mov{Src: Register{Reg: AX}, Dst: dst})
		return nil

	case in.Op == instructions.Remainder:
		s.emit(&Mov{Src: a, Dst: Register{Reg: AX}})
		s.emit(&Cdq{})
		s.emit(&IDiv{Src: b})
		s.emit(&Mov{Src: Register{Reg: DX}, Dst: dst})
		return nil

	case in.Op.IsShift():
		shiftOp, err := targetShiftOp(in.Op)
		if err != nil {
			return err
		}
		s.emit(&Mov{Src: b, Dst: Register{Reg: CX}})
		s.emit(&Mov{Src: a, Dst: dst})
		s.emit(&Binary{Op: shiftOp, Src: Register{Reg: CL}, Dst: dst})
		return nil

	case in.Op.IsComparison():
		// Cmp x, y computes y - x; for "a < b" we emit Cmp b, a so
		// SetCC L reads 1 iff a < b.
		s.emit(&Cmp{Lhs: b, Rhs: a})
		s.emit(&Mov{Src: Imm{Value: 0}, Dst: dst})
		s.emit(&SetCC{Cond: CondCodeFor(in.Op), Dst: dst})
		return nil

	default:
		op, err := targetBinaryOp(in.Op)
		if err != nil {
			return err
		}
		s.emit(&Mov{Src: a, Dst: dst})
		s.emit(&Binary{Op: op, Src: b, Dst: dst})
		return nil
	}
}

func targetBinaryOp(op instructions.BinaryOp) (BinaryOp, error) {
	switch op {
	case instructions.Add:
		return Add, nil
	case instructions.Subtract:
		return Sub, nil
	case instructions.Multiply:
		return Mult, nil
	case instructions.BitAnd:
		return BitAnd, nil
	case instructions.BitOr:
		return BitOr, nil
	case instructions.BitXor:
		return BitXOr, nil
	default:
		return 0, ir.Unreachablef("codegen", "operator %v has no plain target binary form", op)
	}
}

func targetShiftOp(op instructions.BinaryOp) (BinaryOp, error) {
	switch op {
	case instructions.ShiftLeft:
		return ShiftLeft, nil
	case instructions.ShiftRight:
		return ShiftRight, nil
	default:
		return 0, ir.Unreachablef("codegen", "operator %v is not a shift", op)
	}
}
