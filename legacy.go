package omgo

import "strings"

// Converters for two textual reply shapes that predate the typed grammar:
// the simulate() echo carrying a record SimulationResult block, and plain
// record dumps. Both bypass brace matching entirely and scrape the
// name = value lines.

// convertSimulationResult extracts the variable assignments of a
// record SimulationResult block into SimulationResults, and the quoted
// simulation-options substring into SimulationOptions.
func (r *Reassembler) convertSimulationResult(reply string) {
	start := strings.Index(reply, "resultFile")
	end := strings.Index(reply, "\nend SimulationResult")
	if start < 0 {
		return
	}
	if end < 0 {
		end = len(reply)
	}
	block := strings.ReplaceAll(reply[start:end], `\`, "")

	var optionsLine string
	for _, line := range strings.Split(block, "\n") {
		name, value, ok := splitAssignment(line)
		if !ok {
			continue
		}
		if name == "simulationOptions" {
			optionsLine = value
			continue
		}
		r.tree.SimulationResults[name] = Coerce(stripQuotes(value))
	}

	// the options value is itself a quoted "name = value, ..." list
	for _, pair := range strings.Split(stripQuotes(optionsLine), ",") {
		name, value, ok := splitAssignment(pair)
		if !ok {
			continue
		}
		r.tree.SimulationOptions[name] = Coerce(value)
	}
}

// convertRecordDump extracts the field assignments of a
// record <Name> ... end <Name>; dump into RecordResults, with the record
// type name kept under the synthetic RecordName key.
func (r *Reassembler) convertRecordDump(reply string) {
	head := strings.Index(reply, "record ")
	if head < 0 {
		return
	}
	rest := reply[head+len("record "):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		nl = len(rest)
	}
	name := strings.TrimSpace(rest[:nl])

	body := rest[nl:]
	if tail := strings.Index(body, "end "+name); tail >= 0 {
		body = body[:tail]
	}
	body = strings.ReplaceAll(body, `\`, "")

	for _, line := range strings.Split(body, "\n") {
		field, value, ok := splitAssignment(line)
		if !ok {
			continue
		}
		r.tree.RecordResults[field] = Coerce(stripQuotes(value))
	}
	r.tree.RecordResults["RecordName"] = StringValue(name)
}

// splitAssignment splits one "name = value," line, dropping the trailing
// comma. ok is false for lines without an assignment.
func splitAssignment(line string) (name, value string, ok bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:eq])
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[eq+1:]), ","))
	if name == "" {
		return "", "", false
	}
	return name, value, true
}
