package parser

import "tally/internal/ast"

// Op is an operator placeholder collected during parsing, before
// precedence resolution.
type Op interface {
	opNode()
}

// InfixOp is a named operator such as `+`.
type InfixOp struct {
	Name string
}

// ExprOp is a backtick-quoted expression used in operator position. The
// expression lands in callee position of the resolved application, so it
// is re-evaluated each time the infix form runs.
type ExprOp struct {
	Expr ast.Expr
}

func (InfixOp) opNode() {}
func (ExprOp) opNode()  {}

type OpChunk struct {
	Op      Op
	Operand ast.Expr
}

// OpList is the flat infix stream `initial, op0, e1, op1, e2, …`.
type OpList struct {
	Initial ast.Expr
	Chunks  []OpChunk
}

func calleeOf(op Op) ast.Expr {
	switch op := op.(type) {
	case InfixOp:
		return &ast.Name{Value: op.Name}
	case ExprOp:
		return op.Expr
	}
	panic("unreachable op variant")
}

// ResolveOps runs Dijkstra's shunting-yard over the operator stream using
// the current priorities, producing a binary application tree.
func ResolveOps(list OpList, opts *Options) ast.Expr {
	operands := []ast.Expr{list.Initial}
	var ops []Op

	reduce := func() {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		applied := &ast.App{Fn: &ast.App{Fn: calleeOf(op), Arg: left}, Arg: right}
		operands = append(operands, applied)
	}

	for _, chunk := range list.Chunks {
		cur := opts.priorityOf(chunk.Op)
		for len(ops) > 0 {
			top := opts.priorityOf(ops[len(ops)-1])
			// The stack top wins on strictly higher strength, or on a tie
			// when the incoming operator associates left. Ties under Right
			// stack up, which is what makes right-nested trees.
			if cur.Strength < top.Strength || (cur.Strength == top.Strength && cur.Assoc == Left) {
				reduce()
				continue
			}
			break
		}
		ops = append(ops, chunk.Op)
		operands = append(operands, chunk.Operand)
	}
	for len(ops) > 0 {
		reduce()
	}
	return operands[0]
}
