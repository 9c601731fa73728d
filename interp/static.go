package interp

import (
	"github.com/veylang/defer-runtime/errors"
	"github.com/veylang/defer-runtime/frame"
)

// Validate performs the front end's compile-time checks over a whole
// program. Every rejection is a static semantics error; Run refuses to
// execute a program that fails validation, so none of these conditions
// can surface mid-execution.
func Validate(p *Program) error {
	c := &checker{}
	return c.stmts(p.Stmts)
}

// checker walks the AST with just enough context to decide placement
// legality: what function kind encloses us, which break and continue
// targets are in scope, and whether we are inside a deferred body.
type checker struct {
	inFunc  bool
	inGen   bool
	inAsync bool
	inDefer bool
	loops   int
	breaks  int
	labels  map[string]bool
}

func (c *checker) stmts(list []Stmt) error {
	for _, s := range list {
		if err := c.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) stmt(s Stmt) error {
	switch st := s.(type) {
	case *Block:
		return c.stmts(st.Stmts)

	case *Let:
		return c.expr(st.Value)
	case *Assign:
		return c.expr(st.Value)
	case *ExprStmt:
		return c.expr(st.X)

	case *If:
		if err := c.expr(st.Cond); err != nil {
			return err
		}
		if err := c.stmts(st.Then); err != nil {
			return err
		}
		return c.stmts(st.Else)

	case *While:
		if err := c.expr(st.Cond); err != nil {
			return err
		}
		return c.loopBody(st.Label, st.Body, st.Unbraced)

	case *ForRange:
		if err := c.expr(st.From); err != nil {
			return err
		}
		if err := c.expr(st.To); err != nil {
			return err
		}
		return c.loopBody(st.Label, st.Body, st.Unbraced)

	case *Switch:
		if err := c.expr(st.Subject); err != nil {
			return err
		}
		sub := *c
		sub.breaks++
		for _, cs := range st.Cases {
			if cs.Match != nil {
				if err := c.expr(cs.Match); err != nil {
					return err
				}
			}
			if err := sub.stmts(cs.Body); err != nil {
				return err
			}
		}
		return nil

	case *Break:
		if st.Label != "" && !c.labels[st.Label] {
			return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
				Detail("break targets unknown label %q", st.Label).Build()
		}
		if st.Label == "" && c.breaks == 0 {
			return errors.InvalidInput(errors.PhaseRegister, "break outside a loop or switch")
		}
		return nil

	case *Continue:
		if st.Label != "" && !c.labels[st.Label] {
			return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
				Detail("continue targets unknown label %q", st.Label).Build()
		}
		if st.Label == "" && c.loops == 0 {
			return errors.InvalidInput(errors.PhaseRegister, "continue outside a loop")
		}
		return nil

	case *Return:
		if !c.inFunc {
			return errors.InvalidInput(errors.PhaseRegister, "return outside a function")
		}
		if st.Value != nil {
			return c.expr(st.Value)
		}
		return nil

	case *Throw:
		return c.expr(st.Value)

	case *Try:
		if err := c.stmts(st.Body); err != nil {
			return err
		}
		if err := c.stmts(st.Catch); err != nil {
			return err
		}
		return c.stmts(st.Finally)

	case *Defer:
		return c.deferStmt(st)

	default:
		return nil
	}
}

func (c *checker) loopBody(label string, body []Stmt, unbraced bool) error {
	if unbraced {
		if d, ok := soleDefer(body); ok {
			return errors.UnbracedBody(d.Pos)
		}
	}
	sub := *c
	sub.loops++
	sub.breaks++
	if label != "" {
		sub.labels = cloneLabels(c.labels)
		sub.labels[label] = true
	}
	return sub.stmts(body)
}

func (c *checker) deferStmt(st *Defer) error {
	if st.Await && !c.inAsync {
		where := "module"
		if c.inFunc {
			where = "function"
		}
		return errors.AsyncOutsideAsync(st.Pos, where)
	}

	f := deferFacts(st)
	switch {
	case f.HasReturn:
		return errors.EscapingTransfer(st.Pos, "return")
	case f.HasBreak:
		return errors.EscapingTransfer(st.Pos, "break")
	case f.HasContinue:
		return errors.EscapingTransfer(st.Pos, "continue")
	case f.HasYield:
		return errors.YieldInDeferred(st.Pos)
	}

	// Recheck the body with a clean control context so nested
	// constructs inside the deferred body get their own validation.
	// Only the await-bearing defer form admits suspension points, so a
	// plain deferred body treats await as misplaced.
	sub := checker{inFunc: c.inFunc, inAsync: c.inAsync && st.Await, inDefer: true}
	return sub.stmts(st.Body)
}

func (c *checker) expr(e Expr) error {
	switch x := e.(type) {
	case nil, *Lit, *Ident:
		return nil

	case *Bin:
		if err := c.expr(x.L); err != nil {
			return err
		}
		return c.expr(x.R)

	case *Call:
		if err := c.expr(x.Fn); err != nil {
			return err
		}
		for _, a := range x.Args {
			if err := c.expr(a); err != nil {
				return err
			}
		}
		return nil

	case *Func:
		sub := checker{inFunc: true, inGen: x.Generator, inAsync: x.Async}
		return sub.stmts(x.Body)

	case *Await:
		if !c.inAsync {
			return errors.InvalidInput(errors.PhaseRegister, "await outside an async function")
		}
		return c.expr(x.X)

	case *Yield:
		if c.inDefer {
			return errors.YieldInDeferred("")
		}
		if !c.inGen {
			return errors.InvalidInput(errors.PhaseRegister, "yield outside a generator")
		}
		return c.expr(x.X)

	default:
		return nil
	}
}

// deferFacts computes the syntactic facts the registry validates at
// registration time: control transfers that would escape the deferred
// body and yields anywhere inside it. Nested function literals keep
// their transfers to themselves; nested defers are checked when they
// register.
func deferFacts(st *Defer) frame.Static {
	var f frame.Static
	scanStmts(st.Body, &f, 0, 0, nil)
	return f
}

func scanStmts(list []Stmt, f *frame.Static, loops, breaks int, labels map[string]bool) {
	for _, s := range list {
		scanStmt(s, f, loops, breaks, labels)
	}
}

func scanStmt(s Stmt, f *frame.Static, loops, breaks int, labels map[string]bool) {
	switch st := s.(type) {
	case *Block:
		scanStmts(st.Stmts, f, loops, breaks, labels)
	case *Let:
		scanExpr(st.Value, f)
	case *Assign:
		scanExpr(st.Value, f)
	case *ExprStmt:
		scanExpr(st.X, f)
	case *If:
		scanExpr(st.Cond, f)
		scanStmts(st.Then, f, loops, breaks, labels)
		scanStmts(st.Else, f, loops, breaks, labels)
	case *While:
		scanExpr(st.Cond, f)
		scanLoop(st.Label, st.Body, f, loops, breaks, labels)
	case *ForRange:
		scanExpr(st.From, f)
		scanExpr(st.To, f)
		scanLoop(st.Label, st.Body, f, loops, breaks, labels)
	case *Switch:
		scanExpr(st.Subject, f)
		for _, cs := range st.Cases {
			scanExpr(cs.Match, f)
			scanStmts(cs.Body, f, loops, breaks+1, labels)
		}
	case *Break:
		if st.Label != "" {
			if !labels[st.Label] {
				f.HasBreak = true
			}
		} else if breaks == 0 {
			f.HasBreak = true
		}
	case *Continue:
		if st.Label != "" {
			if !labels[st.Label] {
				f.HasContinue = true
			}
		} else if loops == 0 {
			f.HasContinue = true
		}
	case *Return:
		f.HasReturn = true
		scanExpr(st.Value, f)
	case *Throw:
		scanExpr(st.Value, f)
	case *Try:
		scanStmts(st.Body, f, loops, breaks, labels)
		scanStmts(st.Catch, f, loops, breaks, labels)
		scanStmts(st.Finally, f, loops, breaks, labels)
	case *Defer:
		// Belongs to the inner frame; nothing here escapes this body.
	}
}

func scanLoop(label string, body []Stmt, f *frame.Static, loops, breaks int, labels map[string]bool) {
	if label != "" {
		labels = cloneLabels(labels)
		labels[label] = true
	}
	scanStmts(body, f, loops+1, breaks+1, labels)
}

func scanExpr(e Expr, f *frame.Static) {
	switch x := e.(type) {
	case *Bin:
		scanExpr(x.L, f)
		scanExpr(x.R, f)
	case *Call:
		scanExpr(x.Fn, f)
		for _, a := range x.Args {
			scanExpr(a, f)
		}
	case *Await:
		scanExpr(x.X, f)
	case *Yield:
		f.HasYield = true
		scanExpr(x.X, f)
	case *Func:
		// A nested function's body is its own activation.
	}
}

func soleDefer(body []Stmt) (*Defer, bool) {
	if len(body) != 1 {
		return nil, false
	}
	d, ok := body[0].(*Defer)
	return d, ok
}

func cloneLabels(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
