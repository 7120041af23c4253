package symbol

// Reserved symbols known by fixed id to the parser and the virtual machine
// (spec.md §3). They are interned eagerly at package init time so that every
// other package can refer to them as Go constants instead of re-interning
// string literals on every use.
var (
	Set    = Intern("$set")
	Progn  = Intern("$progn")
	Quote  = Intern("$quote")
	Dot    = Intern("$dot")
	Fn     = Intern("$fn")
	If     = Intern("$if")
	NewObj = Intern("$new")

	ClassStmt    = Intern("_stmt")
	ClassExpr    = Intern("_expr")
	ClassCmpExpr = Intern("_cmpexpr")
	ClassAddExpr = Intern("_addexpr")
	ClassMulExpr = Intern("_mulexpr")
	ClassBinary  = Intern("_binary")
	ClassUnary   = Intern("_unary")
	ClassPostfix = Intern("_postfix")
	ClassTerm    = Intern("_term")

	OpAdd = Intern("+")
	OpSub = Intern("-")
	OpMul = Intern("*")
	OpDiv = Intern("/")
	OpAnd = Intern("and")
	OpOr  = Intern("or")
	OpNot = Intern("not")
	OpIs  = Intern("is")

	OpLt  = Intern("<")
	OpGt  = Intern(">")
	OpLe  = Intern("<=")
	OpGe  = Intern(">=")
	OpEq  = Intern("==")
	OpNe  = Intern("!=")
	OpSeq = Intern("===")
	OpSne = Intern("!==")

	// Property names backing the list/pair intrinsic-accessor opcodes
	// (spec.md §4.1's LdA/LdD/LdLeft/LdRight/LdStart/LdEnd/LdCount/
	// LdLength): each fast-paths the matching intrinsic Kind and otherwise
	// falls back to a plain getProperty using one of these symbols.
	PropA      = Intern("a")
	PropD      = Intern("d")
	PropLeft   = Intern("left")
	PropRight  = Intern("right")
	PropStart  = Intern("start")
	PropEnd    = Intern("end")
	PropCount  = Intern("count")
	PropLength = Intern("length")
)

// reservedClasses is the closed set of syntax-class symbols wired into the
// built-in precedence ladder (spec.md §4.3, "Reserved classes").
var reservedClasses = map[ID]bool{
	ClassStmt:    true,
	ClassExpr:    true,
	ClassCmpExpr: true,
	ClassAddExpr: true,
	ClassMulExpr: true,
	ClassBinary:  true,
	ClassUnary:   true,
	ClassPostfix: true,
	ClassTerm:    true,
}

// IsReservedClass reports whether id names one of the nine syntax classes
// built into the precedence ladder.
func IsReservedClass(id ID) bool { return reservedClasses[id] }
