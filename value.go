package omgo

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which member of the Value union is populated.
type Kind int

const (
	KindNone Kind = iota
	KindBoolean
	KindInteger
	KindReal
	KindString
	KindIdentifier
	KindSequence
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindIdentifier:
		return "Identifier"
	case KindSequence:
		return "Sequence"
	case KindRecord:
		return "Record"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the result of parsing one serialized OMC value. It is a tagged
// union; the zero Value is None. Tuples and arrays both parse to
// KindSequence, they differ only in the source delimiter. Records keep their
// fields but not their declared type name.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    *big.Int
	Real   float64
	Str    string // String and Identifier text
	Items  []Value
	Fields map[string]Value
}

// NoneValue returns the None value.
func NoneValue() Value { return Value{} }

// BoolValue returns a Boolean value.
func BoolValue(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// IntValue returns an Integer value.
func IntValue(i int64) Value { return Value{Kind: KindInteger, Int: big.NewInt(i)} }

// BigIntValue returns an Integer value backed by n.
func BigIntValue(n *big.Int) Value { return Value{Kind: KindInteger, Int: n} }

// RealValue returns a Real value.
func RealValue(f float64) Value { return Value{Kind: KindReal, Real: f} }

// StringValue returns a String value. s holds the decoded text, without
// surrounding quotes.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IdentifierValue returns an Identifier value holding a (possibly qualified)
// symbolic name.
func IdentifierValue(s string) Value { return Value{Kind: KindIdentifier, Str: s} }

// SequenceValue returns a Sequence value over items.
func SequenceValue(items ...Value) Value {
	return Value{Kind: KindSequence, Items: items}
}

// RecordValue returns a Record value over fields.
func RecordValue(fields map[string]Value) Value {
	return Value{Kind: KindRecord, Fields: fields}
}

// IsNone reports whether v is the None value.
func (v Value) IsNone() bool { return v.Kind == KindNone }

// Len returns the number of items of a Sequence, or of fields of a Record,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.Kind {
	case KindSequence:
		return len(v.Items)
	case KindRecord:
		return len(v.Fields)
	}
	return 0
}

// At returns the i-th item of a Sequence, or None when out of range.
func (v Value) At(i int) Value {
	if v.Kind != KindSequence || i < 0 || i >= len(v.Items) {
		return Value{}
	}
	return v.Items[i]
}

// Field returns a Record field by name, or None when absent.
func (v Value) Field(name string) Value {
	if v.Kind != KindRecord {
		return Value{}
	}
	return v.Fields[name]
}

// Int64 returns the value as an int64 when it is an Integer that fits,
// otherwise ok is false.
func (v Value) Int64() (n int64, ok bool) {
	if v.Kind != KindInteger || v.Int == nil || !v.Int.IsInt64() {
		return 0, false
	}
	return v.Int.Int64(), true
}

// Float64 returns the value as a float64 for Real and Integer values.
func (v Value) Float64() (f float64, ok bool) {
	switch v.Kind {
	case KindReal:
		return v.Real, true
	case KindInteger:
		f, _ := new(big.Float).SetInt(v.Int).Float64()
		return f, true
	}
	return 0, false
}

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNone:
		return true
	case KindBoolean:
		return v.Bool == o.Bool
	case KindInteger:
		return v.Int.Cmp(o.Int) == 0
	case KindReal:
		return v.Real == o.Real
	case KindString, KindIdentifier:
		return v.Str == o.Str
	case KindSequence:
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(v.Fields) != len(o.Fields) {
			return false
		}
		for name, f := range v.Fields {
			of, present := o.Fields[name]
			if !present || !f.Equal(of) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value back into the wire syntax. Re-parsing the
// rendering with ParseTyped yields an equal Value. Sequences always render
// with braces and records with a placeholder type name, since the source
// delimiter and the record type name are not retained.
func (v Value) String() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}

func (v Value) render(b *strings.Builder) {
	switch v.Kind {
	case KindNone:
		b.WriteString("NONE()")
	case KindBoolean:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInteger:
		b.WriteString(v.Int.String())
	case KindReal:
		s := strconv.FormatFloat(v.Real, 'g', -1, 64)
		b.WriteString(s)
		if !strings.ContainsAny(s, ".eE") {
			// keep the literal a Real on re-parse
			b.WriteString(".0")
		}
	case KindString:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v.Str, `"`, `\"`))
		b.WriteByte('"')
	case KindIdentifier:
		b.WriteString(v.Str)
	case KindSequence:
		b.WriteByte('{')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			it.render(b)
		}
		b.WriteByte('}')
	case KindRecord:
		names := make([]string, 0, len(v.Fields))
		for name := range v.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("record R ")
		for i, name := range names {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(name)
			b.WriteString(" = ")
			f := v.Fields[name]
			f.render(b)
		}
		b.WriteString(" end R;")
	}
}
