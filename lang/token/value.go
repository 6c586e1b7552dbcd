package token

// Value carries the payload produced by the scanner alongside a Token kind:
// the literal source text, its position, and (for literal tokens) the
// decoded value.
type Value struct {
	Raw    string  // verbatim source text of the token
	Pos    Pos     // position of the first character
	Int    int64   // decoded value, for INT
	Float  float64 // decoded value, for FLOAT
	String string  // decoded value, for STRING (unescaped), or a directive's argument
}
