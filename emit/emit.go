// Package emit renders a codegen.Function as textual AT&T-syntax
// assembly: tab-indented, newline-terminated, macOS Mach-O symbol
// prefixing. Rendering is deterministic; nothing here inspects state
// beyond the instruction it is formatting.
package emit

import (
	"fmt"
	"strings"

	"github.com/skx/cc-subset-amd64/codegen"
	"github.com/skx/cc-subset-amd64/internal/ir"
)

// Function renders fn as a complete assembly listing, including the
// ".globl" directive and the function's prologue/epilogue.
func Function(fn *codegen.Function) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "\t.globl _%s\n", fn.Name)
	fmt.Fprintf(&b, "_%s:\n", fn.Name)
	b.WriteString("\tpushq\t%rbp\n")
	b.WriteString("\tmovq\t%rsp, %rbp\n")

	for _, instr := range fn.Instructions {
		if err := writeInstr(&b, instr); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func writeInstr(b *strings.Builder, instr codegen.Instr) error {
	switch in := instr.(type) {
	case *codegen.AllocateStack:
		fmt.Fprintf(b, "\tsubq\t$%d, %%rsp\n", in.Size)
		return nil

	case *codegen.Ret:
		b.WriteString("\tmovq\t%rbp, %rsp\n")
		b.WriteString("\tpopq\t%rbp\n")
		b.WriteString("\tret\n")
		return nil

	case *codegen.Mov:
		src, err := operand32(in.Src)
		if err != nil {
			return err
		}
		dst, err := operand32(in.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tmovl\t%s, %s\n", src, dst)
		return nil

	case *codegen.Unary:
		mnemonic, err := unaryMnemonic(in.Op)
		if err != nil {
			return err
		}
		dst, err := operand32(in.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\t%s\t%s\n", mnemonic, dst)
		return nil

	case *codegen.Binary:
		mnemonic, err := binaryMnemonic(in.Op)
		if err != nil {
			return err
		}
		if in.Op == codegen.ShiftLeft || in.Op == codegen.ShiftRight {
			src, err := operand8(in.Src)
			if err != nil {
				return err
			}
			dst, err := operand32(in.Dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "\t%s\t%s, %s\n", mnemonic, src, dst)
			return nil
		}
		src, err := operand32(in.Src)
		if err != nil {
			return err
		}
		dst, err := operand32(in.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\t%s\t%s, %s\n", mnemonic, src, dst)
		return nil

	case *codegen.IDiv:
		src, err := operand32(in.Src)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tidivl\t%s\n", src)
		return nil

	case *codegen.Cdq:
		b.WriteString("\tcdq\n")
		return nil

	case *codegen.Cmp:
		lhs, err := operand32(in.Lhs)
		if err != nil {
			return err
		}
		rhs, err := operand32(in.Rhs)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tcmpl\t%s, %s\n", lhs, rhs)
		return nil

	case *codegen.Jmp:
		fmt.Fprintf(b, "\tjmp\t.L%s\n", in.Target)
		return nil

	case *codegen.JmpCC:
		fmt.Fprintf(b, "\tj%s\t.L%s\n", in.Cond, in.Target)
		return nil

	case *codegen.SetCC:
		dst, err := operand8(in.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tset%s\t%s\n", in.Cond, dst)
		return nil

	case *codegen.Label:
		fmt.Fprintf(b, ".L%s:\n", in.Name)
		return nil

	default:
		return ir.Unreachablef("emit", "unhandled instruction %T", instr)
	}
}

func unaryMnemonic(op codegen.UnaryOp) (string, error) {
	switch op {
	case codegen.Neg:
		return "negl", nil
	case codegen.Not:
		return "notl", nil
	default:
		return "", ir.Unreachablef("emit", "unhandled unary op %v", op)
	}
}

func binaryMnemonic(op codegen.BinaryOp) (string, error) {
	switch op {
	case codegen.Add:
		return "addl", nil
	case codegen.Sub:
		return "subl", nil
	case codegen.Mult:
		return "imull", nil
	case codegen.BitAnd:
		return "andl", nil
	case codegen.BitOr:
		return "orl", nil
	case codegen.BitXOr:
		return "xorl", nil
	case codegen.ShiftLeft:
		return "shll", nil
	case codegen.ShiftRight:
		return "sarl", nil
	default:
		return "", ir.Unreachablef("emit", "unhandled binary op %v", op)
	}
}

// operand32 renders op at 32-bit width. A Pseudo reaching here is an
// internal error: the allocator must have replaced it with a Stack slot.
func operand32(op codegen.Operand) (string, error) {
	switch o := op.(type) {
	case codegen.Imm:
		return fmt.Sprintf("$%d", o.Value), nil
	case codegen.Stack:
		return fmt.Sprintf("-%d(%%rbp)", o.Offset), nil
	case codegen.Register:
		return register32(o.Reg)
	case codegen.Pseudo:
		return "", ir.Unreachablef("emit", "un-allocated pseudo %q reached the emitter", o.Name)
	default:
		return "", ir.Unreachablef("emit", "unhandled operand %T", op)
	}
}

// operand8 renders op at 1-byte width; only SetCC destinations and the
// shift-count source use this width.
func operand8(op codegen.Operand) (string, error) {
	switch o := op.(type) {
	case codegen.Stack:
		return fmt.Sprintf("-%d(%%rbp)", o.Offset), nil
	case codegen.Register:
		return register8(o.Reg)
	case codegen.Pseudo:
		return "", ir.Unreachablef("emit", "un-allocated pseudo %q reached the emitter", o.Name)
	default:
		return "", ir.Unreachablef("emit", "unhandled byte-width operand %T", op)
	}
}

func register32(r codegen.Reg) (string, error) {
	switch r {
	case codegen.AX:
		return "%eax", nil
	case codegen.DX:
		return "%edx", nil
	case codegen.CX:
		return "%ecx", nil
	case codegen.R10:
		return "%r10d", nil
	case codegen.R11:
		return "%r11d", nil
	default:
		return "", ir.Unreachablef("emit", "register %v has no 32-bit form here", r)
	}
}

func register8(r codegen.Reg) (string, error) {
	switch r {
	case codegen.AX:
		return "%al", nil
	case codegen.DX:
		return "%dl", nil
	case codegen.CL:
		return "%cl", nil
	case codegen.R10:
		return "%r10b", nil
	case codegen.R11:
		return "%r11b", nil
	default:
		return "", ir.Unreachablef("emit", "register %v has no 1-byte form here", r)
	}
}
