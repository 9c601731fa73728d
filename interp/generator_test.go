package interp

import "testing"

// genHarness runs a program that builds a generator from fn and hands
// the suspended activation to the test through a capture builtin.
func genHarness(t *testing.T, fn *Func) (*Generator, *[]string) {
	t.Helper()
	in, out := recorder()

	var g *Generator
	in.Builtin("capture", func(args []Value) (Value, error) {
		g = args[0].(*Generator)
		return nil, nil
	})

	mustRun(t, in, &Program{Stmts: []Stmt{
		&Let{Name: "mk", Value: fn},
		expr(&Call{Fn: id("capture"), Args: []Expr{call("mk")}}),
	}})
	if g == nil {
		t.Fatal("generator was not captured")
	}
	return g, out
}

func TestGenerator_YieldTransparency(t *testing.T) {
	g, out := genHarness(t, &Func{Generator: true, Body: []Stmt{
		deferLog("cleanup"),
		expr(&Yield{X: lit(1)}),
		deferLog("late"),
		expr(&Yield{X: lit(2)}),
		&Return{Value: lit(3)},
	}})

	v, done, err := g.Next(nil)
	if err != nil || done || v != int64(1) {
		t.Fatalf("first resume = (%v, %v, %v)", v, done, err)
	}
	v, done, err = g.Next(nil)
	if err != nil || done || v != int64(2) {
		t.Fatalf("second resume = (%v, %v, %v)", v, done, err)
	}
	// Pending actions survive both suspensions untouched.
	wantLog(t, out, []string{})

	v, done, err = g.Next(nil)
	if err != nil || !done || v != int64(3) {
		t.Fatalf("final resume = (%v, %v, %v)", v, done, err)
	}
	wantLog(t, out, []string{"late", "cleanup"})
}

func TestGenerator_CloseDrainsPendingActions(t *testing.T) {
	g, out := genHarness(t, &Func{Generator: true, Body: []Stmt{
		deferLog("closed"),
		expr(&Yield{X: lit(1)}),
		expr(&Yield{X: lit(2)}),
	}})

	if v, _, _ := g.Next(nil); v != int64(1) {
		t.Fatalf("first yield = %v", v)
	}
	wantLog(t, out, []string{})

	v, done, err := g.Return(int64(42))
	if err != nil || !done || v != int64(42) {
		t.Fatalf("close = (%v, %v, %v)", v, done, err)
	}
	wantLog(t, out, []string{"closed"})
	if !g.Done() {
		t.Fatal("generator still live after close")
	}
}

func TestGenerator_CloseIsNotCatchable(t *testing.T) {
	g, out := genHarness(t, &Func{Generator: true, Body: []Stmt{
		&Try{
			Body:      []Stmt{expr(&Yield{X: lit(1)})},
			HasCatch:  true,
			CatchName: "e",
			Catch:     []Stmt{logLit("caught")},
			Finally:   []Stmt{logLit("finally")},
		},
		logLit("after-try"),
	}})

	g.Next(nil)
	_, done, err := g.Return(int64(9))
	if err != nil || !done {
		t.Fatalf("close = (done=%v, err=%v)", done, err)
	}
	// The close runs finally blocks but never the catch, and execution
	// does not resume past the try.
	wantLog(t, out, []string{"finally"})
}

func TestGenerator_ThrowDrainsLiveFrames(t *testing.T) {
	g, out := genHarness(t, &Func{Generator: true, Body: []Stmt{
		deferLog("cleanup"),
		&Block{Stmts: []Stmt{
			deferLog("inner"),
			expr(&Yield{X: lit(1)}),
		}},
	}})

	g.Next(nil)
	_, done, err := g.Throw(&ScriptError{Value: "poisoned"})
	if !done {
		t.Fatal("throw did not complete the activation")
	}
	if err == nil || err.Error() != "poisoned" {
		t.Fatalf("err = %v, want poisoned", err)
	}
	// Every frame between the suspended yield and the function frame
	// drains on the way out.
	wantLog(t, out, []string{"inner", "cleanup"})
}

func TestGenerator_ThrowCaughtInsideBody(t *testing.T) {
	g, out := genHarness(t, &Func{Generator: true, Body: []Stmt{
		&Try{
			Body:      []Stmt{expr(&Yield{X: lit(1)})},
			HasCatch:  true,
			CatchName: "e",
			Catch:     []Stmt{logOf(id("e"))},
		},
		&Return{Value: lit("recovered")},
	}})

	g.Next(nil)
	v, done, err := g.Throw(&ScriptError{Value: "zap"})
	if err != nil || !done || v != "recovered" {
		t.Fatalf("throw resume = (%v, %v, %v)", v, done, err)
	}
	wantLog(t, out, []string{"zap"})
}

func TestGenerator_CloseBeforeFirstResume(t *testing.T) {
	g, out := genHarness(t, &Func{Generator: true, Body: []Stmt{
		deferLog("never"),
		expr(&Yield{X: lit(1)}),
	}})

	v, done, err := g.Return(int64(5))
	if err != nil || !done || v != int64(5) {
		t.Fatalf("close = (%v, %v, %v)", v, done, err)
	}
	// The body never started; there is nothing to drain.
	wantLog(t, out, []string{})
}

func TestGenerator_DriveAfterCompletion(t *testing.T) {
	g, _ := genHarness(t, &Func{Generator: true, Body: []Stmt{
		&Return{Value: lit(1)},
	}})

	g.Next(nil)
	v, done, err := g.Next(nil)
	if !done || err != nil {
		t.Fatalf("post-completion resume = (%v, %v, %v)", v, done, err)
	}
}
