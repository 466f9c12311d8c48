package codegen

import "github.com/skx/cc-subset-amd64/stack"

// Legalize rewrites operand shapes x86 cannot encode, using R10 as a
// source-side scratch register and R11 as a destination-side scratch
// register. Neither register is ever live across the instruction
// boundary the legalizer itself introduces.
func Legalize(fn *Function) *Function {
	out := make([]Instr, 0, len(fn.Instructions))
	staging := stack.New[Instr]()

	for _, instr := range fn.Instructions {
		legalizeInstr(instr, staging)
		out = append(out, staging.Drain()...)
	}

	return &Function{Name: fn.Name, Instructions: out}
}

func isStack(op Operand) bool {
	_, ok := op.(Stack)
	return ok
}

func isImm(op Operand) bool {
	_, ok := op.(Imm)
	return ok
}

func legalizeInstr(instr Instr, staging *stack.Stack[Instr]) {
	switch in := instr.(type) {
	case *Mov:
		if isStack(in.Src) && isStack(in.Dst) {
			staging.Push(&Mov{Src: in.Src, Dst: Register{Reg: R10}})
			staging.Push(&Mov{Src: Register{Reg: R10}, Dst: in.Dst})
			return
		}
		staging.Push(in)

	case *Binary:
		switch in.Op {
		case Add, Sub, BitAnd, BitOr, BitXOr:
			if isStack(in.Src) && isStack(in.Dst) {
				staging.Push(&Mov{Src: in.Src, Dst: Register{Reg: R10}})
				staging.Push(&Binary{Op: in.Op, Src: Register{Reg: R10}, Dst: in.Dst})
				return
			}
		case Mult:
			if isStack(in.Dst) {
				staging.Push(&Mov{Src: in.Dst, Dst: Register{Reg: R11}})
				staging.Push(&Binary{Op: Mult, Src: in.Src, Dst: Register{Reg: R11}})
				staging.Push(&Mov{Src: Register{Reg: R11}, Dst: in.Dst})
				return
			}
		}
		staging.Push(in)

	case *IDiv:
		if isImm(in.Src) {
			staging.Push(&Mov{Src: in.Src, Dst: Register{Reg: R10}})
			staging.Push(&IDiv{Src: Register{Reg: R10}})
			return
		}
		staging.Push(in)

	case *Cmp:
		if isStack(in.Lhs) && isStack(in.Rhs) {
			staging.Push(&Mov{Src: in.Lhs, Dst: Register{Reg: R10}})
			staging.Push(&Cmp{Lhs: Register{Reg: R10}, Rhs: in.Rhs})
			return
		}
		if isImm(in.Rhs) {
			staging.Push(&Mov{Src: in.Rhs, Dst: Register{Reg: R11}})
			staging.Push(&Cmp{Lhs: in.Lhs, Rhs: Register{Reg: R11}})
			return
		}
		staging.Push(in)

	default:
		staging.Push(instr)
	}
}
