package bnf

// Visitor is implemented by concrete decoders. Each method is responsible
// for descending into its own children (by calling Accept on them) when it
// wants traversal to continue past that node. The framework does not walk
// the tree for the visitor automatically, because several decoders need to
// skip or reorder subtrees based on semantic state.
type Visitor interface {
	VisitRoot(n *ASTNode, ctx *VisitorContext)
	VisitIntermediary(n *ASTNode, ctx *VisitorContext)
	VisitTerminal(n *ASTNode, ctx *VisitorContext)
}

// VisitorContext carries a decoder-private mutable payload (UserData) and a
// stack of non-owning ancestor references mirroring the active traversal
// path: Accept pushes on entry and pops on exit.
type VisitorContext struct {
	UserData any

	Stack []*ASTNode

	entered map[*ASTNode]bool
}

// NewVisitorContext returns a VisitorContext with the given user payload.
func NewVisitorContext(userData any) *VisitorContext {
	return &VisitorContext{UserData: userData, entered: make(map[*ASTNode]bool)}
}

// Under reports whether a node with the given LHS name is currently an
// ancestor on the traversal stack. Decoders use this to scope property
// accumulation (e.g. "is this <field> beneath <header_line> or
// <item_line>?").
func (ctx *VisitorContext) Under(lhs string) bool {
	for _, n := range ctx.Stack {
		if n != nil && n.LHS == lhs {
			return true
		}
		if n != nil && n.Kind == NodeIntermediary && n.Alternative.LHS == lhs {
			return true
		}
	}
	return false
}

// Parent returns the immediate ancestor on the stack, or nil if n is the
// root of the traversal.
func (ctx *VisitorContext) Parent() *ASTNode {
	if len(ctx.Stack) == 0 {
		return nil
	}
	return ctx.Stack[len(ctx.Stack)-1]
}

// Accept dispatches n to the appropriate Visit* method of v, guarding
// against re-entry: each node is entered at most once per decode, which
// matters because several Visit* implementations call Accept recursively on
// their own children rather than leaving that to the framework. Accept
// pushes n onto ctx.Stack before dispatch and pops it on return.
func Accept(v Visitor, n *ASTNode, ctx *VisitorContext) {
	if n == nil || ctx.entered[n] {
		return
	}
	ctx.entered[n] = true

	ctx.Stack = append(ctx.Stack, n)
	defer func() { ctx.Stack = ctx.Stack[:len(ctx.Stack)-1] }()

	switch n.Kind {
	case NodeRoot:
		v.VisitRoot(n, ctx)
	case NodeIntermediary:
		v.VisitIntermediary(n, ctx)
	case NodeTerminal:
		v.VisitTerminal(n, ctx)
	}
}

// AcceptChildren runs Accept over every child of n, in order. Most Visit*
// implementations end with this call once they've recorded their own
// semantics for n.
func AcceptChildren(v Visitor, n *ASTNode, ctx *VisitorContext) {
	for _, c := range n.Children {
		Accept(v, c, ctx)
	}
}
