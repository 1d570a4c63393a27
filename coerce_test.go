package omgo

import "testing"

func TestCoerce(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"true", BoolValue(true)},
		{"True", BoolValue(true)},
		{"TRUE", BoolValue(true)},
		{"false", BoolValue(false)},
		{"False", BoolValue(false)},
		{"FALSE", BoolValue(false)},
		{"42", IntValue(42)},
		{"-3", IntValue(-3)},
		{"123123123123123123232323", BigIntValue(mustBig("123123123123123123232323"))},
		{"4.5", RealValue(4.5)},
		{"1e-06", RealValue(1e-06)},
		{"dassl", StringValue("dassl")},
		{"  spaced  ", StringValue("spaced")},
		{"", StringValue("")},
		{"1.2.3", StringValue("1.2.3")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Coerce(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("Coerce(%q) = %s (%s), want %s (%s)",
					tt.input, got, got.Kind, tt.want, tt.want.Kind)
			}
		})
	}
}

// Scalars the grammar accepts must coerce to the same number and boolean
// values, so a reply classified by either parser reads the same.
func TestCoerceAgreesWithGrammar(t *testing.T) {
	inputs := []string{"true", "false", "2", "-7", "5.9", "1.2e3", "9223372036854775808"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			typed, err := ParseTyped(input)
			if err != nil {
				t.Fatalf("ParseTyped(%q): %v", input, err)
			}
			coerced := Coerce(input)
			if !typed.Equal(coerced) {
				t.Errorf("ParseTyped = %s (%s), Coerce = %s (%s)",
					typed, typed.Kind, coerced, coerced.Kind)
			}
		})
	}
}
