package token

// Value carries the literal payload produced by the scanner for a single
// token: its source position plus, depending on the token kind, the raw
// spelling and/or a decoded numeric or string value.
type Value struct {
	Pos    Pos    // starting position of the token
	Raw    string // raw spelling as it appeared in the source
	String string // decoded value, for STRING and CHAR tokens
	Int    int64  // decoded value, for INT tokens
	Float  float64
}

// PosMode controls how much position information a printer includes for
// each node.
type PosMode int

const (
	// PosNone omits position information entirely.
	PosNone PosMode = iota
	// PosShort prints only the line:col pair.
	PosShort
	// PosLong prints filename:line:col.
	PosLong
)
