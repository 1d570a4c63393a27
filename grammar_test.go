package omgo

import (
	"errors"
	"math/big"
	"testing"
)

// ============================================================================
// Scalar literals
// ============================================================================

func TestParseTypedScalars(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"true", BoolValue(true)},
		{"false", BoolValue(false)},
		{"2", IntValue(2)},
		{"1", IntValue(1)},
		{"-7", IntValue(-7)},
		{"1.5", RealValue(1.5)},
		{"1.2e3", RealValue(1200.0)},
		{"1e-3", RealValue(0.001)},
		{"-0.5", RealValue(-0.5)},
		{"blabla2", IdentifierValue("blabla2")},
		{"ErrorLevel.warning", IdentifierValue("ErrorLevel.warning")},
		{`"hello"`, StringValue("hello")},
		{`"a\"b"`, StringValue(`a"b`)},
		{"NONE()", NoneValue()},
		{"NONE ( )", NoneValue()},
		{"SOME(1.0)", RealValue(1.0)},
		{"SOME({1,2})", SequenceValue(IntValue(1), IntValue(2))},
		{"", NoneValue()},
		{"   ", NoneValue()},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTyped(tt.input)
			if err != nil {
				t.Fatalf("ParseTyped(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTyped(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTypedIntegerKind(t *testing.T) {
	got, err := ParseTyped("1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindInteger {
		t.Errorf("ParseTyped(\"1\").Kind = %s, want Integer", got.Kind)
	}

	got, err = ParseTyped("1.2e3")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindReal {
		t.Errorf("ParseTyped(\"1.2e3\").Kind = %s, want Real", got.Kind)
	}
}

func TestParseTypedBigIntegers(t *testing.T) {
	tests := []string{
		"123123123123123123232323",
		"9223372036854775808", // one past int64 max
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := ParseTyped(input)
			if err != nil {
				t.Fatalf("ParseTyped(%q) error: %v", input, err)
			}
			if got.Kind != KindInteger {
				t.Fatalf("kind = %s, want Integer", got.Kind)
			}
			want, _ := new(big.Int).SetString(input, 10)
			if got.Int.Cmp(want) != 0 {
				t.Errorf("value = %s, want %s", got.Int, want)
			}
			if _, ok := got.Int64(); ok {
				t.Errorf("%s unexpectedly fits in int64", input)
			}
		})
	}
}

// ============================================================================
// Composite values
// ============================================================================

func TestParseTypedComposite(t *testing.T) {
	input := `(1.0,{{1,true,3},{"4\"
",5.9,6,NONE ( )},record ABC
  startTime = ErrorLevel.warning,
  'stop*Time' = SOME(1.0)
end ABC;})`

	want := SequenceValue(
		RealValue(1.0),
		SequenceValue(
			SequenceValue(IntValue(1), BoolValue(true), IntValue(3)),
			SequenceValue(StringValue("4\"\n"), RealValue(5.9), IntValue(6), NoneValue()),
			RecordValue(map[string]Value{
				"startTime":   IdentifierValue("ErrorLevel.warning"),
				"'stop*Time'": RealValue(1.0),
			}),
		),
	)

	got, err := ParseTyped(input)
	if err != nil {
		t.Fatalf("ParseTyped error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestParseTypedEmptyContainers(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"{}", SequenceValue()},
		{"()", SequenceValue()},
		{"{{}}", SequenceValue(SequenceValue())},
		{"(1,(2,3))", SequenceValue(IntValue(1), SequenceValue(IntValue(2), IntValue(3)))},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTyped(tt.input)
			if err != nil {
				t.Fatalf("ParseTyped(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTyped(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTypedRecordDiscardsTypeName(t *testing.T) {
	got, err := ParseTyped("record A.B x = 1, y = 2.0 end A.B;")
	if err != nil {
		t.Fatal(err)
	}
	want := RecordValue(map[string]Value{
		"x": IntValue(1),
		"y": RealValue(2.0),
	})
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

// ============================================================================
// Array dimension arithmetic
// ============================================================================

func TestParseTypedDimensions(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"{5+1,1+6}", SequenceValue(IntValue(6), IntValue(7))},
		{"{2*3+1}", SequenceValue(IntValue(7))},
		{"{2+3*2}", SequenceValue(IntValue(8))},
		{"{7/2}", SequenceValue(RealValue(3.5))},
		{"{6/2}", SequenceValue(RealValue(3.0))},
		{"{1.5+1}", SequenceValue(RealValue(2.5))},
		{"{y+1,10}", SequenceValue(IdentifierValue("y+1"), IntValue(10))},
		{"{n-1}", SequenceValue(IdentifierValue("n-1"))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTyped(tt.input)
			if err != nil {
				t.Fatalf("ParseTyped(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTyped(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Failures
// ============================================================================

func TestParseTypedErrors(t *testing.T) {
	tests := []string{
		"{1,2",
		"(1,2))",
		"{1,2}}",
		`"unterminated`,
		"record A x = 1 end B", // missing semicolon
		"1 2",
		"Resistor(2)",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTyped(input)
			if err == nil {
				t.Fatalf("ParseTyped(%q) succeeded, want error", input)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("error is %T, want *ParseError", err)
			}
		})
	}
}

// ============================================================================
// Renderer round trip
// ============================================================================

func TestRenderRoundTrip(t *testing.T) {
	values := []Value{
		NoneValue(),
		BoolValue(true),
		BoolValue(false),
		IntValue(42),
		IntValue(-1),
		RealValue(1200.0),
		RealValue(5.9),
		StringValue("a\"b\nc"),
		IdentifierValue("Modelica.Blocks.Continuous.PID"),
		SequenceValue(IntValue(1), SequenceValue(RealValue(2.5), NoneValue())),
		RecordValue(map[string]Value{
			"startTime":   IdentifierValue("ErrorLevel.warning"),
			"'stop*Time'": RealValue(1.0),
		}),
	}

	for _, v := range values {
		t.Run(v.String(), func(t *testing.T) {
			back, err := ParseTyped(v.String())
			if err != nil {
				t.Fatalf("re-parse of %q: %v", v.String(), err)
			}
			if !back.Equal(v) {
				t.Errorf("round trip changed %s into %s", v, back)
			}
		})
	}
}
