package omgo

import (
	"math/big"
	"testing"
)

func TestValueZeroIsNone(t *testing.T) {
	var v Value
	if !v.IsNone() {
		t.Error("zero Value is not None")
	}
	if v.String() != "NONE()" {
		t.Errorf("zero Value renders as %q", v.String())
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NoneValue(), "NONE()"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{IntValue(42), "42"},
		{BigIntValue(mustBig("123123123123123123232323")), "123123123123123123232323"},
		{RealValue(5.9), "5.9"},
		{RealValue(1200.0), "1200.0"},
		{RealValue(-0.001), "-0.001"},
		{StringValue(`say "hi"`), `"say \"hi\""`},
		{IdentifierValue("ErrorLevel.warning"), "ErrorLevel.warning"},
		{SequenceValue(), "{}"},
		{SequenceValue(IntValue(1), BoolValue(true)), "{1,true}"},
		{RecordValue(map[string]Value{"b": IntValue(2), "a": IntValue(1)}),
			"record R a = 1,b = 2 end R;"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{IntValue(1), IntValue(1), true},
		{IntValue(1), IntValue(2), false},
		{IntValue(1), RealValue(1.0), false},
		{RealValue(2.5), RealValue(2.5), true},
		{StringValue("a"), IdentifierValue("a"), false},
		{NoneValue(), NoneValue(), true},
		{
			SequenceValue(IntValue(1), IntValue(2)),
			SequenceValue(IntValue(1), IntValue(2)),
			true,
		},
		{
			SequenceValue(IntValue(1)),
			SequenceValue(IntValue(1), IntValue(2)),
			false,
		},
		{
			RecordValue(map[string]Value{"x": IntValue(1)}),
			RecordValue(map[string]Value{"x": IntValue(1)}),
			true,
		},
		{
			RecordValue(map[string]Value{"x": IntValue(1)}),
			RecordValue(map[string]Value{"y": IntValue(1)}),
			false,
		},
	}

	for i, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("case %d: Equal(%s, %s) = %v, want %v", i, tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Equal(tt.a); got != tt.want {
			t.Errorf("case %d: Equal is not symmetric", i)
		}
	}
}

func TestValueAccessors(t *testing.T) {
	seq := SequenceValue(IntValue(10), StringValue("x"))
	if seq.Len() != 2 {
		t.Errorf("Len = %d, want 2", seq.Len())
	}
	if got := seq.At(0); !got.Equal(IntValue(10)) {
		t.Errorf("At(0) = %s", got)
	}
	if got := seq.At(5); !got.IsNone() {
		t.Errorf("At out of range = %s, want NONE()", got)
	}

	rec := RecordValue(map[string]Value{"stopTime": RealValue(4.5)})
	if got := rec.Field("stopTime"); !got.Equal(RealValue(4.5)) {
		t.Errorf("Field(stopTime) = %s", got)
	}
	if got := rec.Field("missing"); !got.IsNone() {
		t.Errorf("Field(missing) = %s, want NONE()", got)
	}

	n, ok := IntValue(7).Int64()
	if !ok || n != 7 {
		t.Errorf("Int64 = %d, %v", n, ok)
	}
	f, ok := RealValue(2.5).Float64()
	if !ok || f != 2.5 {
		t.Errorf("Float64 = %g, %v", f, ok)
	}
	if f, ok := IntValue(3).Float64(); !ok || f != 3.0 {
		t.Errorf("Float64 of integer = %g, %v", f, ok)
	}
	if _, ok := StringValue("x").Int64(); ok {
		t.Error("Int64 of string reported ok")
	}
}

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big integer literal: " + s)
	}
	return n
}
