package omgo

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The reply grammar of the OMC interactive API: numbers, strings,
// identifiers, booleans, SOME/NONE option markers, tuples, arrays and
// records, serialized as a single line of text. Alternatives are ordered;
// the first match wins.

type omcReply struct {
	Value *omcValue `parser:"@@?"`
}

type omcValue struct {
	Str    *string       `parser:"  @String"`
	Number *string       `parser:"| @('-'? Number)"`
	Record *omcRecord    `parser:"| @@"`
	Array  *omcArray     `parser:"| @@"`
	Tuple  *omcTuple     `parser:"| @@"`
	Some   *omcSome      `parser:"| @@"`
	True   bool          `parser:"| @'true'"`
	False  bool          `parser:"| @'false'"`
	None   *omcNone      `parser:"| @@"`
	Ident  *omcQualIdent `parser:"| @@"`
}

type omcSome struct {
	Inner *omcValue `parser:"'SOME' '(' @@ ')'"`
}

type omcNone struct {
	OK bool `parser:"@('NONE' '(' ')')"`
}

type omcTuple struct {
	Items []*omcValue `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

// Array items admit infix arithmetic so that dimension echoes such as
// {5+1,1+6} evaluate to plain numbers. An item with an identifier operand
// stays symbolic and collapses to its source text ("y+1").
type omcArray struct {
	Items []*omcArrayItem `parser:"'{' ( @@ ( ',' @@ )* )? '}'"`
}

type omcArrayItem struct {
	First *omcValue    `parser:"@@"`
	Ops   []*omcOpTerm `parser:"@@*"`
}

type omcOpTerm struct {
	Op   string    `parser:"@('+' | '-' | '*' | '/')"`
	Term *omcValue `parser:"@@"`
}

type omcRecord struct {
	Name   *omcQualIdent `parser:"'record' @@"`
	Fields []*omcField   `parser:"@@ ( ',' @@ )*"`
	End    *omcQualIdent `parser:"'end' @@ ';'"`
}

type omcField struct {
	Name  string    `parser:"@(Ident | QuotedIdent)"`
	Value *omcValue `parser:"'=' @@"`
}

type omcQualIdent struct {
	Parts []string `parser:"@(Ident | QuotedIdent) ( '.' @(Ident | QuotedIdent) )*"`
}

var omcLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "QuotedIdent", Pattern: `'(?:[^'\\]|\\.)*'`},
	{Name: "Number", Pattern: `(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/(){},=.;]`},
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},
})

var replyParser = participle.MustBuild[omcReply](
	participle.Lexer(omcLexer),
	participle.Elide("Whitespace"),
)

// ParseTyped parses one well-formed serialized OMC value into a Value tree.
// Empty input parses to None. The parse is strict: input that does not match
// the grammar returns a *ParseError and no partial result, and the caller is
// expected to fall back to ParseBasic.
func ParseTyped(input string) (Value, error) {
	reply, err := replyParser.ParseString("", input)
	if err != nil {
		return Value{}, typedParseError(input, err)
	}
	if reply.Value == nil {
		return Value{}, nil
	}
	return reply.Value.native(), nil
}

func typedParseError(input string, err error) *ParseError {
	perr := &ParseError{Msg: err.Error(), Input: input}
	var uerr participle.Error
	if errors.As(err, &uerr) {
		pos := uerr.Position()
		perr.Line = pos.Line
		perr.Column = pos.Column
		perr.Msg = uerr.Message()
	}
	return perr
}

func (v *omcValue) native() Value {
	switch {
	case v.Str != nil:
		return StringValue(decodeQuoted(*v.Str))
	case v.Number != nil:
		return numberValue(*v.Number)
	case v.Record != nil:
		fields := make(map[string]Value, len(v.Record.Fields))
		for _, f := range v.Record.Fields {
			fields[fieldName(f.Name)] = f.Value.native()
		}
		return RecordValue(fields)
	case v.Array != nil:
		items := make([]Value, len(v.Array.Items))
		for i, it := range v.Array.Items {
			items[i] = it.native()
		}
		return SequenceValue(items...)
	case v.Tuple != nil:
		items := make([]Value, len(v.Tuple.Items))
		for i, it := range v.Tuple.Items {
			items[i] = it.native()
		}
		return SequenceValue(items...)
	case v.Some != nil:
		return v.Some.Inner.native()
	case v.True:
		return BoolValue(true)
	case v.False:
		return BoolValue(false)
	case v.None != nil:
		return Value{}
	case v.Ident != nil:
		return IdentifierValue(v.Ident.join())
	}
	return Value{}
}

func (q *omcQualIdent) join() string {
	parts := make([]string, len(q.Parts))
	for i, p := range q.Parts {
		parts[i] = fieldName(p)
	}
	return strings.Join(parts, ".")
}

// fieldName normalizes an identifier token. Quoted identifiers keep their
// quotes, with inner quote characters re-escaped the way OMC prints them.
func fieldName(tok string) string {
	if len(tok) >= 2 && tok[0] == '\'' {
		return requoteIdent(tok)
	}
	return tok
}

func requoteIdent(tok string) string {
	inner := tok[1 : len(tok)-1]
	inner = strings.ReplaceAll(inner, `\'`, `'`)
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, `"`, `\"`)
	inner = strings.ReplaceAll(inner, `'`, `\'`)
	inner = strings.ReplaceAll(inner, "\f", `\f`)
	inner = strings.ReplaceAll(inner, "\n", `\n`)
	inner = strings.ReplaceAll(inner, "\r", `\r`)
	inner = strings.ReplaceAll(inner, "\t", `\t`)
	return "'" + inner + "'"
}

// decodeQuoted strips the surrounding double quotes and decodes escaped
// quotes. Other backslash sequences pass through untouched.
func decodeQuoted(tok string) string {
	inner := tok[1 : len(tok)-1]
	return strings.ReplaceAll(inner, `\"`, `"`)
}

// numberValue applies the literal disambiguation rule: Integer only when the
// literal has neither a decimal point nor an exponent, Real otherwise.
// Integers are arbitrary precision.
func numberValue(lit string) Value {
	if !strings.ContainsAny(lit, ".eE") {
		n, ok := new(big.Int).SetString(lit, 10)
		if !ok {
			// unreachable for lexed literals
			return IdentifierValue(lit)
		}
		return BigIntValue(n)
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return IdentifierValue(lit)
	}
	return RealValue(f)
}

// native of an array item: a plain value when there is no operator, the
// evaluated arithmetic expression otherwise.
func (it *omcArrayItem) native() Value {
	if len(it.Ops) == 0 {
		return it.First.native()
	}
	return evalDimension(it)
}

// evalDimension folds an infix expression with * and / binding tighter than
// + and -. Division, or any Real operand, makes the result Real. Any
// identifier operand makes the expression symbolic: the result is the source
// text joined without spaces.
func evalDimension(it *omcArrayItem) Value {
	operands := make([]Value, 0, len(it.Ops)+1)
	ops := make([]string, 0, len(it.Ops))
	operands = append(operands, it.First.native())
	for _, t := range it.Ops {
		ops = append(ops, t.Op)
		operands = append(operands, t.Term.native())
	}

	for _, o := range operands {
		if o.Kind != KindInteger && o.Kind != KindReal {
			var b strings.Builder
			for i, op := range operands {
				if i > 0 {
					b.WriteString(ops[i-1])
				}
				b.WriteString(op.String())
			}
			return IdentifierValue(b.String())
		}
	}

	real := false
	for _, op := range ops {
		if op == "/" {
			real = true
		}
	}
	for _, o := range operands {
		if o.Kind == KindReal {
			real = true
		}
	}

	if real {
		acc := make([]float64, len(operands))
		for i, o := range operands {
			acc[i], _ = o.Float64()
		}
		vals, pend := foldReal(acc, ops, "*", "/")
		vals, _ = foldReal(vals, pend, "+", "-")
		return RealValue(vals[0])
	}

	acc := make([]*big.Int, len(operands))
	for i, o := range operands {
		acc[i] = o.Int
	}
	vals, pend := foldInt(acc, ops, "*")
	vals, _ = foldInt(vals, pend, "+", "-")
	return BigIntValue(vals[0])
}

func foldReal(vals []float64, ops []string, match ...string) ([]float64, []string) {
	out := []float64{vals[0]}
	var rest []string
	for i, op := range ops {
		rhs := vals[i+1]
		if !matchOp(op, match) {
			out = append(out, rhs)
			rest = append(rest, op)
			continue
		}
		last := len(out) - 1
		switch op {
		case "*":
			out[last] *= rhs
		case "/":
			out[last] /= rhs
		case "+":
			out[last] += rhs
		case "-":
			out[last] -= rhs
		}
	}
	return out, rest
}

func foldInt(vals []*big.Int, ops []string, match ...string) ([]*big.Int, []string) {
	out := []*big.Int{new(big.Int).Set(vals[0])}
	var rest []string
	for i, op := range ops {
		rhs := vals[i+1]
		if !matchOp(op, match) {
			out = append(out, new(big.Int).Set(rhs))
			rest = append(rest, op)
			continue
		}
		last := out[len(out)-1]
		switch op {
		case "*":
			last.Mul(last, rhs)
		case "+":
			last.Add(last, rhs)
		case "-":
			last.Sub(last, rhs)
		}
	}
	return out, rest
}

func matchOp(op string, match []string) bool {
	for _, m := range match {
		if op == m {
			return true
		}
	}
	return false
}
