// Package resolver performs lexical renaming and lvalue checking over
// the parsed AST, producing a resolved AST in which every declared
// name has been replaced by a mangled, globally-unique name.
//
// This subset has a single lexical scope (the function body); nested
// blocks are out of scope, so the environment is a flat map rather
// than a chain of scopes.
package resolver

import (
	"fmt"

	"github.com/skx/cc-subset-amd64/ast"
)

// Error is returned for a duplicate declaration, a use of an
// undeclared identifier, or an assignment/compound-assignment whose
// left operand is not a Var.
type Error struct {
	Detail string
}

func (e *Error) Error() string {
	return "resolve error: " + e.Detail
}

func errorf(format string, args ...any) error {
	return &Error{Detail: fmt.Sprintf(format, args...)}
}

// resolver holds our object-state: the source-name -> mangled-name
// environment and a monotonic counter for minting fresh names.
type resolver struct {
	env     map[string]string
	counter int
}

// Resolve walks prog, renaming every declared variable to a mangled
// name of the form "<name>.resolved.<n>" and rewriting every Var
// occurrence to match. It returns a fatal *Error on a duplicate
// declaration, an undeclared use, or a non-lvalue assignment target.
func Resolve(prog *ast.Program) (*ast.Program, error) {
	r := &resolver{env: make(map[string]string)}

	body, err := r.resolveBlockItems(prog.Function.Body)
	if err != nil {
		return nil, err
	}

	return &ast.Program{
		Function: &ast.Function{
			Name: prog.Function.Name,
			Body: body,
		},
	}, nil
}

func (r *resolver) resolveBlockItems(items []ast.BlockItem) ([]ast.BlockItem, error) {
	out := make([]ast.BlockItem, 0, len(items))
	for _, item := range items {
		resolved, err := r.resolveBlockItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (r *resolver) resolveBlockItem(item ast.BlockItem) (ast.BlockItem, error) {
	switch it := item.(type) {
	case *ast.Declaration:
		return r.resolveDeclaration(it)
	case ast.Statement:
		return r.resolveStatement(it)
	default:
		return nil, errorf("internal: unhandled block item type %T", item)
	}
}

func (r *resolver) resolveDeclaration(decl *ast.Declaration) (*ast.Declaration, error) {
	if _, exists := r.env[decl.Name]; exists {
		return nil, errorf("duplicate variable declaration %q", decl.Name)
	}

	r.counter++
	mangled := fmt.Sprintf("%s.resolved.%d", decl.Name, r.counter)
	r.env[decl.Name] = mangled

	var init ast.Expression
	if decl.Init != nil {
		resolved, err := r.resolveExpression(decl.Init)
		if err != nil {
			return nil, err
		}
		init = resolved
	}

	return &ast.Declaration{Name: mangled, Init: init}, nil
}

func (r *resolver) resolveStatement(stmt ast.Statement) (ast.Statement, error) {
	switch s := stmt.(type) {
	case *ast.Return:
		e, err := r.resolveExpression(s.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: e}, nil

	case *ast.ExprStatement:
		e, err := r.resolveExpression(s.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStatement{Value: e}, nil

	case *ast.Null:
		return s, nil

	default:
		return nil, errorf("internal: unhandled statement type %T", stmt)
	}
}

func (r *resolver) resolveExpression(expr ast.Expression) (ast.Expression, error) {
	switch e := expr.(type) {
	case *ast.Constant:
		return e, nil

	case *ast.Var:
		mangled, ok := r.env[e.Name]
		if !ok {
			return nil, errorf("use of undeclared identifier %q", e.Name)
		}
		return &ast.Var{Name: mangled}, nil

	case *ast.Unary:
		operand, err := r.resolveExpression(e.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: e.Op, Operand: operand}, nil

	case *ast.Binary:
		left, err := r.resolveExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.resolveExpression(e.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: e.Op, Left: left, Right: right}, nil

	case *ast.Assign:
		if _, ok := e.Left.(*ast.Var); !ok {
			return nil, errorf("left side of assignment is not an lvalue")
		}
		left, err := r.resolveExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.resolveExpression(e.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Left: left, Right: right}, nil

	case *ast.Compound:
		if _, ok := e.Left.(*ast.Var); !ok {
			return nil, errorf("left side of compound assignment is not an lvalue")
		}
		left, err := r.resolveExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.resolveExpression(e.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Compound{Op: e.Op, Left: left, Right: right}, nil

	default:
		return nil, errorf("internal: unhandled expression type %T", expr)
	}
}
