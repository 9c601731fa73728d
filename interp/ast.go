package interp

// Programs are constructed directly as AST values by the host. Node
// positions (Pos fields) are optional "file:line:col" strings used in
// diagnostics; empty is fine.

// Stmt is a statement node.
type Stmt interface{ stmt() }

// Expr is an expression node.
type Expr interface{ expr() }

// Program is a whole module. Its top level hosts deferred actions of
// its own and drains them when the module finishes.
type Program struct {
	Name  string
	Stmts []Stmt
}

// Block is a braced statement list. It opens a fresh binding scope and
// a fresh engine frame.
type Block struct {
	Stmts []Stmt
}

// Let declares a new binding in the current scope.
type Let struct {
	Name  string
	Value Expr
}

// Assign rebinds an existing name, searching enclosing scopes.
type Assign struct {
	Name  string
	Value Expr
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	X Expr
}

// If runs Then when Cond is truthy, Else otherwise. Both branches are
// braced blocks.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a condition loop. Each iteration of Body runs in its own
// iteration frame. Unbraced marks a single-statement body written
// without braces, which rejects a sole defer statically.
type While struct {
	Label    string
	Cond     Expr
	Body     []Stmt
	Unbraced bool
}

// ForRange iterates Var over the integers [From, To). Same framing
// rules as While.
type ForRange struct {
	Label    string
	Var      string
	From     Expr
	To       Expr
	Body     []Stmt
	Unbraced bool
}

// SwitchCase is one clause. A nil Match marks the default clause.
// Clauses fall through unless the body breaks.
type SwitchCase struct {
	Match Expr
	Body  []Stmt
}

// Switch selects the first clause whose Match equals Subject, or the
// default clause. The whole clause list shares one engine frame.
type Switch struct {
	Subject Expr
	Cases   []SwitchCase
}

// Break exits the nearest enclosing loop or switch, or the loop with
// the given label.
type Break struct {
	Label string
}

// Continue advances the nearest enclosing loop, or the loop with the
// given label.
type Continue struct {
	Label string
}

// Return exits the enclosing function with an optional value.
type Return struct {
	Value Expr
}

// Throw raises the evaluated value as an error.
type Throw struct {
	Value Expr
}

// Try runs Body; a throw escaping it binds to CatchName and runs Catch
// when HasCatch is set. Finally always runs last and its own abrupt
// completion takes precedence.
type Try struct {
	Body      []Stmt
	HasCatch  bool
	CatchName string
	Catch     []Stmt
	Finally   []Stmt
}

// Defer registers Body to run when the innermost frame exits. Block
// distinguishes the braced form from the single-statement form; Await
// marks an asynchronous deferred body, legal only inside an async
// function.
type Defer struct {
	Await bool
	Block bool
	Body  []Stmt
	Pos   string
}

// Lit is a literal value: nil, bool, int64, float64 or string.
type Lit struct {
	Value any
}

// Ident reads a binding.
type Ident struct {
	Name string
}

// Bin is a binary operation. Supported ops: + - * / == != < <= > >=.
type Bin struct {
	Op string
	L  Expr
	R  Expr
}

// Call invokes a closure, builtin, generator function or async
// function.
type Call struct {
	Fn   Expr
	Args []Expr
}

// Func is a function literal. Generator and Async select the
// activation kind.
type Func struct {
	Name      string
	Params    []string
	Body      []Stmt
	Async     bool
	Generator bool
}

// Await suspends until the operand settles. Legal only inside an async
// function; a non-completion operand passes through unchanged.
type Await struct {
	X Expr
}

// Yield suspends the enclosing generator with the operand's value.
type Yield struct {
	X Expr
}

func (*Block) stmt()    {}
func (*Let) stmt()      {}
func (*Assign) stmt()   {}
func (*ExprStmt) stmt() {}
func (*If) stmt()       {}
func (*While) stmt()    {}
func (*ForRange) stmt() {}
func (*Switch) stmt()   {}
func (*Break) stmt()    {}
func (*Continue) stmt() {}
func (*Return) stmt()   {}
func (*Throw) stmt()    {}
func (*Try) stmt()      {}
func (*Defer) stmt()    {}

func (*Lit) expr()   {}
func (*Ident) expr() {}
func (*Bin) expr()   {}
func (*Call) expr()  {}
func (*Func) expr()  {}
func (*Await) expr() {}
func (*Yield) expr() {}
