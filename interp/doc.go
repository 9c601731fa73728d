// Package interp is the reference tree-walking evaluator wired to the
// deferred-action engine.
//
// It exists so the engine's semantics can be exercised end to end,
// through real loops, switches, try/catch, closures, generators and async
// functions, rather than through mocked exit events. Programs are built
// directly as AST values; parsing text into this AST is the front end's
// job and lives outside this repository.
//
//	in := interp.New()
//	var out []string
//	in.Builtin("log", func(args []interp.Value) (interp.Value, error) {
//	    out = append(out, fmt.Sprint(args[0]))
//	    return nil, nil
//	})
//	err := in.Run(&interp.Program{Stmts: []interp.Stmt{
//	    &interp.Defer{Body: []interp.Stmt{call("log", lit("bye"))}},
//	    &interp.ExprStmt{X: call("log", lit("hi"))},
//	}})
//
// # Scopes and frames
//
// Every defer-hosting scope maps onto one engine frame: the module top
// level, each function body, each braced block, each loop iteration, and
// each whole switch body (all clauses share one frame, mirroring how
// block-scoped bindings are shared across clauses). Calling a function
// pushes frames on the same registry; strict nesting keeps activations
// independent. A generator activation runs on its own registry so its
// pending frames survive suspension.
//
// # Static validation
//
// Validate performs the front end's compile-time checks: escaping control
// transfers and yield inside deferred bodies, defer await outside an async
// context, defer as the sole body of an unbraced loop, and basic placement
// rules for return, break, continue, await and yield. Run validates before
// executing; none of these conditions can surface at run time.
package interp
