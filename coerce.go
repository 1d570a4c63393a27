package omgo

import (
	"math/big"
	"strconv"
	"strings"
)

// Coerce converts a scalar token into a Value the way the heuristic parser
// types its leaves: boolean first, then integer, then real, with the trimmed
// original text as the terminal fallback. Coercion never fails. The numeric
// rules match the typed grammar, so both parsers agree on scalars.
func Coerce(s string) Value {
	s = strings.TrimSpace(s)
	if v, ok := coerceBool(s); ok {
		return v
	}
	if v, ok := coerceInt(s); ok {
		return v
	}
	if v, ok := coerceReal(s); ok {
		return v
	}
	return StringValue(s)
}

func coerceBool(s string) (Value, bool) {
	switch s {
	case "true", "True", "TRUE":
		return BoolValue(true), true
	case "false", "False", "FALSE":
		return BoolValue(false), true
	}
	return Value{}, false
}

func coerceInt(s string) (Value, bool) {
	if s == "" {
		return Value{}, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Value{}, false
	}
	return BigIntValue(n), true
}

func coerceReal(s string) (Value, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, false
	}
	return RealValue(f), true
}

// unescapeReply decodes the escapes OMC leaves in quoted reply payloads.
func unescapeReply(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\?`, `?`)
	s = strings.ReplaceAll(s, `\'`, `'`)
	return s
}

// stripQuotes removes one layer of surrounding double quotes, if present.
func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
