package omgo

import "testing"

const messageLogRaw = `{record OpenModelica.Scripting.ErrorMessage
    info = record OpenModelica.Scripting.SourceInfo
      filename = "a.mo",
      readonly = false,
      lineStart = 2,
      columnStart = 3,
      lineEnd = 2,
      columnEnd = 10
    end OpenModelica.Scripting.SourceInfo;,
    message = "Class A not found in scope <TOP>.",
    kind = .OpenModelica.Scripting.ErrorKind.translation,
    level = .OpenModelica.Scripting.ErrorLevel.error,
    id = 3
end OpenModelica.Scripting.ErrorMessage;,record OpenModelica.Scripting.ErrorMessage
    info = record OpenModelica.Scripting.SourceInfo
      filename = "",
      readonly = false,
      lineStart = 0,
      columnStart = 0,
      lineEnd = 0,
      columnEnd = 0
    end OpenModelica.Scripting.SourceInfo;,
    message = "Deprecated annotation:\n  use \"x\" instead.",
    kind = .OpenModelica.Scripting.ErrorKind.scripting,
    level = .OpenModelica.Scripting.ErrorLevel.warning,
    id = 500
end OpenModelica.Scripting.ErrorMessage;}
`

func TestParseMessages(t *testing.T) {
	msgs := parseMessages(messageLogRaw)
	if len(msgs) != 2 {
		t.Fatalf("parsed %d messages, want 2", len(msgs))
	}

	first := msgs[0]
	if first.File != "a.mo" || first.Line != 2 || first.Column != 3 {
		t.Errorf("source position = %s:%d:%d", first.File, first.Line, first.Column)
	}
	if first.Kind != "translation" || first.Level != "error" || first.ID != 3 {
		t.Errorf("kind/level/id = %s/%s/%d", first.Kind, first.Level, first.ID)
	}
	if first.Message != "Class A not found in scope <TOP>." {
		t.Errorf("message = %q", first.Message)
	}

	second := msgs[1]
	if second.Level != "warning" || second.ID != 500 {
		t.Errorf("second kind/level/id = %s/%s/%d", second.Kind, second.Level, second.ID)
	}
	if second.Message != "Deprecated annotation:\n  use \"x\" instead." {
		t.Errorf("second message = %q", second.Message)
	}
}

func TestParseMessagesEmpty(t *testing.T) {
	for _, raw := range []string{"", "{}", "{}\n"} {
		if msgs := parseMessages(raw); msgs != nil {
			t.Errorf("parseMessages(%q) = %v, want nil", raw, msgs)
		}
	}
}

func TestDecodeMessageText(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`a\tb\rc`, "a\tb\rc"},
		{`say \"hi\"`, `say "hi"`},
		{`back\\slash`, `back\slash`},
		{`unknown \q escape`, `unknown \q escape`},
		{`trailing \`, `trailing \`},
	}
	for _, tt := range tests {
		if got := decodeMessageText(tt.input); got != tt.want {
			t.Errorf("decodeMessageText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
