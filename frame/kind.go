package frame

// Kind identifies the lexical scope a frame represents.
type Kind uint8

const (
	KindFunction Kind = iota
	KindBlock
	KindLoopIteration
	KindSwitchBody
	KindModule
)

// String returns the kind's name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindBlock:
		return "block"
	case KindLoopIteration:
		return "loop-iteration"
	case KindSwitchBody:
		return "switch-body"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Mode distinguishes synchronous deferred actions from await-bearing ones.
type Mode uint8

const (
	ModeSync Mode = iota
	ModeAsync
)

// String returns the mode's name for diagnostics.
func (m Mode) String() string {
	if m == ModeAsync {
		return "async"
	}
	return "sync"
}

// BodyKind distinguishes a single-statement deferred body from a block body.
type BodyKind uint8

const (
	BodyStatement BodyKind = iota
	BodyBlock
)

// String returns the body kind's name for diagnostics.
func (b BodyKind) String() string {
	if b == BodyBlock {
		return "block"
	}
	return "statement"
}
