package omgo

import (
	"regexp"
	"strconv"
)

// Extraction of the OMC message log. getMessagesStringInternal() replies
// with a list of record OpenModelica.Scripting.ErrorMessage blocks; the
// typed grammar cannot digest them (the reply embeds unescaped record
// dumps), so the fields are scraped with regular expressions, as the
// reference client does.

var (
	messageEntryRe = regexp.MustCompile(`(?s)record OpenModelica\.Scripting\.ErrorMessage(.*?)end OpenModelica\.Scripting\.ErrorMessage;`)
	messageRawRe   = regexp.MustCompile(`(?s)\s*info = record OpenModelica\.Scripting\.SourceInfo\n` +
		`\s*filename = "(.*?)",\n` +
		`(?:\s*readonly = (?:.*?),\n)?` +
		`\s*lineStart = (\d+),\n` +
		`\s*columnStart = (\d+),\n` +
		`\s*lineEnd = (?:\d+),\n` +
		`\s*columnEnd = (?:\d+)\n` +
		`\s*end OpenModelica\.Scripting\.SourceInfo;,\n` +
		`\s*message = "(.*?)",\n` +
		`\s*kind = \.OpenModelica\.Scripting\.ErrorKind\.(.*?),\n` +
		`\s*level = \.OpenModelica\.Scripting\.ErrorLevel\.(.*?),\n` +
		`\s*id = (\d+)`)
)

// parseMessages extracts the individual log entries from a raw
// getMessagesStringInternal() reply. Entries that do not match the expected
// record shape are skipped.
func parseMessages(raw string) []OMCMessage {
	if raw == "" || raw == "{}\n" || raw == "{}" {
		return nil
	}
	var msgs []OMCMessage
	for _, entry := range messageEntryRe.FindAllStringSubmatch(raw, -1) {
		m := messageRawRe.FindStringSubmatch(entry[1])
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		id, _ := strconv.Atoi(m[7])
		msgs = append(msgs, OMCMessage{
			File:    m[1],
			Line:    line,
			Column:  col,
			Message: decodeMessageText(m[4]),
			Kind:    m[5],
			Level:   m[6],
			ID:      id,
		})
	}
	return msgs
}

// decodeMessageText undoes the escaping OMC applies to message bodies.
func decodeMessageText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			out = append(out, s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		default:
			out = append(out, '\\', s[i])
		}
	}
	return string(out)
}
