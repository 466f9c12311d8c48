// Package ast holds the abstract syntax tree produced by the parser.
//
// Every sum type here is closed: BlockItem, Statement, and Expression
// are interfaces with an unexported marker method, so adding a new
// case (loops, if, blocks — none of which this subset supports) would
// fail to compile any switch that doesn't handle it. That is
// deliberate; see the parser and resolver for the exhaustive switches
// that walk these trees.
package ast

import "github.com/skx/cc-subset-amd64/instructions"

// Program is the whole translation unit: exactly one function, since
// this subset has no way to declare more than one.
type Program struct {
	Function *Function
}

// Function is a single "int name(void) { ... }" definition.
type Function struct {
	Name string
	Body []BlockItem
}

// BlockItem is either a Declaration or a Statement.
type BlockItem interface {
	blockItem()
}

// Declaration declares a local variable, with an optional initializer.
type Declaration struct {
	Name string
	Init Expression // nil when there is no initializer
}

func (*Declaration) blockItem() {}

// Statement is a BlockItem that is not a declaration.
type Statement interface {
	BlockItem
	statement()
}

// Return evaluates an expression and returns it from the function.
type Return struct {
	Value Expression
}

func (*Return) blockItem() {}
func (*Return) statement() {}

// ExprStatement evaluates an expression purely for its side effects and
// discards the result.
type ExprStatement struct {
	Value Expression
}

func (*ExprStatement) blockItem() {}
func (*ExprStatement) statement() {}

// Null is the empty statement, a bare ";".
type Null struct{}

func (*Null) blockItem() {}
func (*Null) statement() {}

// Expression is any of Constant, Var, Unary, Binary, Assign, or Compound.
type Expression interface {
	expression()
}

// Constant is an integer literal.
type Constant struct {
	Value int32
}

func (*Constant) expression() {}

// Var is a reference to a variable by name. Before the resolver runs
// this is the source spelling; after it, the mangled name.
type Var struct {
	Name string
}

func (*Var) expression() {}

// Unary applies a prefix unary operator to its operand.
type Unary struct {
	Op      instructions.UnaryOp
	Operand Expression
}

func (*Unary) expression() {}

// Binary applies an infix binary operator to two operands, evaluated
// left then right.
type Binary struct {
	Op    instructions.BinaryOp
	Left  Expression
	Right Expression
}

func (*Binary) expression() {}

// Assign is a plain "=" assignment. Left must be a *Var; the resolver
// rejects any other shape as a non-lvalue assignment target.
type Assign struct {
	Left  Expression
	Right Expression
}

func (*Assign) expression() {}

// Compound is a compound assignment ("+=" and the other nine
// arithmetic/bitwise forms). Left must be a *Var, exactly as for Assign.
type Compound struct {
	Op    instructions.BinaryOp
	Left  Expression
	Right Expression
}

func (*Compound) expression() {}
