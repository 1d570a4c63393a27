package omgo

import (
	"strconv"
	"strings"
)

// The heuristic reassembler is the tolerant second tier of reply parsing.
// It recovers structure from malformed or legacy replies that the typed
// grammar rejects, by carving the input into brace-delimited sets and
// classifying what it finds inside. The output is a Tree of synthetic nodes
// rather than a Value: a degraded projection that still lets callers reach
// every piece of the reply.

// Tree accumulates the results of heuristic parsing. Each top-level brace
// region becomes one Set (interrogated as SET1, SET2, ... via Lookup); the
// legacy record echoes fill the flat maps instead.
type Tree struct {
	Sets              []*Set
	SimulationResults map[string]Value
	SimulationOptions map[string]Value
	RecordResults     map[string]Value
}

// Set is one top-level brace region.
type Set struct {
	Values   []Value
	Elements []*Element
	Subsets  []*Subset
	Lists    [][]Value
}

// Element is one identifier(...) chunk found inside a set. Name carries a
// disambiguating suffix: two Resistor chunks become Resistor1 and Resistor2.
type Element struct {
	Name       string
	Properties Properties
}

// Properties holds the classified content of an element body.
type Properties struct {
	Values  []Value
	Results map[string]Value
	Subsets []*Subset
	Lists   [][]Value
}

// Subset is a doubly-nested brace group {{...},{...}}; each inner group is
// one list.
type Subset struct {
	Lists [][]Value
}

// Result is the outcome of one heuristic parse: a scalar for quoted-string
// and bare-scalar replies, the accumulated tree otherwise.
type Result struct {
	Scalar *Value
	Tree   *Tree
}

// Reassembler incrementally builds a Tree from one or more replies.
// Each Parse call adds the reply's top-level regions as further SET entries;
// Reset starts the numbering over. A Reassembler is not safe for concurrent
// use; give each goroutine its own.
type Reassembler struct {
	tree *Tree
}

// NewReassembler returns an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{tree: newTree()}
}

func newTree() *Tree {
	return &Tree{
		SimulationResults: map[string]Value{},
		SimulationOptions: map[string]Value{},
		RecordResults:     map[string]Value{},
	}
}

// Reset discards everything accumulated so far.
func (r *Reassembler) Reset() {
	r.tree = newTree()
}

// Tree returns the accumulated tree.
func (r *Reassembler) Tree() *Tree {
	return r.tree
}

// ParseBasic parses one reply with a fresh Reassembler. It is the
// convenience entry point for the common case of unrelated replies.
func ParseBasic(reply string) (*Result, error) {
	return NewReassembler().Parse(reply)
}

// Parse classifies one reply string and merges it into the tree. Quoted
// strings and bare scalars come back in Result.Scalar without touching the
// tree. A brace imbalance returns a *BracketError and leaves the tree as it
// was before the call.
func (r *Reassembler) Parse(reply string) (*Result, error) {
	if r.tree == nil {
		r.tree = newTree()
	}
	return r.parse(reply)
}

func (r *Reassembler) parse(reply string) (*Result, error) {
	if reply == "" {
		return &Result{Tree: r.tree}, nil
	}

	// untyped tuple replies are treated as brace sets
	if reply[0] == '(' {
		t := strings.TrimRight(reply, " \t\r\n")
		if strings.HasSuffix(t, ")") {
			reply = "{" + t[1:len(t)-1] + "}"
		}
	}

	if reply[0] == '"' {
		v := StringValue(stripQuotes(unescapeReply(reply)))
		return &Result{Scalar: &v, Tree: r.tree}, nil
	}

	if strings.Contains(reply, "record SimulationResult") {
		r.convertSimulationResult(reply)
		return &Result{Tree: r.tree}, nil
	}
	if strings.Contains(reply, "record ") {
		r.convertRecordDump(reply)
		return &Result{Tree: r.tree}, nil
	}

	if v := Coerce(reply); v.Kind != KindString || !strings.Contains(reply, "{") {
		return &Result{Scalar: &v, Tree: r.tree}, nil
	}

	current, next, err := matchSet(reply)
	if err != nil {
		return nil, err
	}

	set := &Set{}
	r.tree.Sets = append(r.tree.Sets, set)
	if current != "" {
		r.populateSet(set, current)
	}

	if hasAlnum(next) {
		return r.parse(next)
	}
	return &Result{Tree: r.tree}, nil
}

// populateSet fills one Set from its brace span: a quoted payload is taken
// whole, element chunks are carved out first, and whatever text is left at
// the same level still goes through the subset and value-list shapes.
func (r *Reassembler) populateSet(set *Set, current string) {
	current = strings.TrimSpace(current)

	if len(current) >= 4 && current[1] == '"' && current[len(current)-2] == '"' {
		body := stripOuterBraces(current)
		v := StringValue(stripQuotes(strings.ReplaceAll(body, `\"`, `"`)))
		set.Values = append(set.Values, v)
		return
	}

	if strings.Contains(current, "(") {
		current = cleanDanglingCommas(r.makeElements(set, current))
		if !hasAlnum(current) {
			return
		}
	}

	for strings.Contains(current, "{{") {
		var region string
		region, current = cutSubsetRegion(current)
		if region == "" {
			break
		}
		set.Subsets = append(set.Subsets, extractSubset(region))
	}
	current = cleanDanglingCommas(current)
	if !hasAlnum(current) {
		return
	}

	collectLists(&set.Lists, current)
}

// makeElements extracts each name(...) chunk as an Element and classifies
// its body, returning the text left over once all chunks are removed.
// Chunks with the same base name get increasing suffixes.
func (r *Reassembler) makeElements(set *Set, s string) string {
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return s
		}
		begin := open
		for begin > 0 && isAlnumByte(s[begin-1]) {
			begin--
		}
		base := s[begin:open]
		end := elementBodyEnd(s, open)
		if base == "" {
			// a stray parenthesized chunk has no element name to anchor
			// it; drop it and keep scanning
			s = s[:open] + s[end+1:]
			continue
		}

		elem := &Element{
			Name:       elementName(set, base),
			Properties: Properties{Results: map[string]Value{}},
		}
		set.Elements = append(set.Elements, elem)
		r.populateElement(elem, s[open+1:end])

		s = s[:begin] + s[end+1:]
	}
}

// elementBodyEnd returns the index of the ')' closing the element body that
// opens at open. A name={...} assignment inside the body is stepped over so
// its braces cannot unbalance the scan.
func elementBodyEnd(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '=':
			if i+1 < len(s) && s[i+1] == '{' {
				braces := 0
				j := i + 1
				for ; j < len(s); j++ {
					if s[j] == '{' {
						braces++
					} else if s[j] == '}' {
						braces--
						if braces == 0 {
							break
						}
					}
				}
				i = j
			}
		}
	}
	return len(s) - 1
}

func elementName(set *Set, base string) string {
	highest := 0
	for _, e := range set.Elements {
		if !strings.HasPrefix(e.Name, base) {
			continue
		}
		n, err := strconv.Atoi(e.Name[len(base):])
		if err == nil && n > highest {
			highest = n
		}
	}
	return base + strconv.Itoa(highest+1)
}

// populateElement classifies an element body: doubly-nested groups become
// Subsets, positional single groups become Lists, and the remaining
// comma-separated terms go through the value-term classifier.
func (r *Reassembler) populateElement(elem *Element, body string) {
	for strings.Contains(body, "{{") {
		var region string
		region, body = cutSubsetRegion(body)
		elem.Properties.Subsets = append(elem.Properties.Subsets, extractSubset(region))
	}

	i := 0
	for i < len(body) {
		if body[i] != '{' {
			i++
			continue
		}
		close := strings.IndexByte(body[i:], '}')
		if close < 0 {
			break
		}
		close += i
		// a brace group that is the value of a name={...} assignment is
		// not a positional set; it stays for the term classifier
		k := i
		for k > 0 && body[k-1] != ',' {
			k--
		}
		if strings.Contains(body[k:i], "=") {
			i = close + 1
			continue
		}
		region := body[i : close+1]
		elem.Properties.Lists = append(elem.Properties.Lists, coerceList(stripBraceChars(region)))
		body = body[:i] + body[close+1:]
		i = 0
	}

	r.makeValues(elem, body)
}

// makeValues is the value-term classifier: name=value terms are recorded
// under Results (with brace-delimited comma lists exploded), bare terms are
// appended positionally to Values.
func (r *Reassembler) makeValues(elem *Element, s string) {
	s = stripOuterParens(s)
	s = stripOuterBraces(s)

	for _, term := range splitTopLevel(s) {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		eq := strings.IndexByte(term, '=')
		if eq >= 0 {
			name := strings.TrimSpace(term[:eq])
			raw := strings.TrimSpace(term[eq+1:])
			if name == "" || raw == "" {
				continue
			}
			v := Coerce(raw)
			if v.Kind == KindString && strings.Contains(v.Str, ",") {
				items := coerceList(stripBraceChars(v.Str))
				elem.Properties.Results[name] = SequenceValue(items...)
			} else {
				elem.Properties.Results[name] = v
			}
			continue
		}
		v := Coerce(term)
		if v.Kind == KindString && strings.Contains(v.Str, ",") {
			items := coerceList(stripBraceChars(v.Str))
			elem.Properties.Values = append(elem.Properties.Values, SequenceValue(items...))
			continue
		}
		elem.Properties.Values = append(elem.Properties.Values, v)
	}
}

// cutSubsetRegion removes the first {{...}} region from s and returns it.
func cutSubsetRegion(s string) (region, rest string) {
	start := strings.Index(s, "{{")
	end := strings.Index(s, "}}")
	if start < 0 || end < 0 || end < start {
		return "", s
	}
	return s[start : end+2], s[:start] + s[end+2:]
}

// extractSubset splits a {{...},{...}} region into one list per inner group.
func extractSubset(region string) *Subset {
	sub := &Subset{}
	inner := region
	if strings.HasPrefix(inner, "{") {
		inner = inner[1 : len(inner)-1]
	}
	for {
		start := strings.IndexByte(inner, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(inner[start:], '}')
		if end < 0 {
			break
		}
		end += start
		sub.Lists = append(sub.Lists, coerceList(inner[start+1:end]))
		inner = inner[:start] + inner[end+1:]
	}
	return sub
}

// collectLists appends one coerced list per balanced brace group in s.
func collectLists(lists *[][]Value, s string) {
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
			if depth == 1 {
				start = i
			}
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				*lists = append(*lists, coerceList(stripBraceChars(s[start:i+1])))
			}
		}
	}
}

// coerceList coerces each comma-separated item of s.
func coerceList(s string) []Value {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]Value, len(parts))
	for i, p := range parts {
		items[i] = Coerce(p)
	}
	return items
}

// splitTopLevel splits on commas outside brace groups.
func splitTopLevel(s string) []string {
	var terms []string
	depth := 0
	anchor := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				terms = append(terms, s[anchor:i])
				anchor = i + 1
			}
		}
	}
	terms = append(terms, s[anchor:])
	return terms
}

func stripOuterBraces(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}

func stripOuterParens(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return s[1 : len(s)-1]
	}
	return s
}

func stripBraceChars(s string) string {
	s = strings.ReplaceAll(s, "{", "")
	return strings.ReplaceAll(s, "}", "")
}

func isAlnumByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Lookup navigates the tree by the synthetic key path the legacy interface
// used, e.g. "SET1.Elements.Resistor1.Properties.Values" or
// "SimulationOptions.stopTime". The second return is false when any segment
// does not resolve.
func (t *Tree) Lookup(path string) (any, bool) {
	segs := strings.Split(path, ".")
	if len(segs) == 0 {
		return nil, false
	}

	switch segs[0] {
	case "SimulationResults":
		return lookupMap(t.SimulationResults, segs[1:])
	case "SimulationOptions":
		return lookupMap(t.SimulationOptions, segs[1:])
	case "RecordResults":
		return lookupMap(t.RecordResults, segs[1:])
	}

	n, ok := numberedKey(segs[0], "SET")
	if !ok || n < 1 || n > len(t.Sets) {
		return nil, false
	}
	return t.Sets[n-1].lookup(segs[1:])
}

func (s *Set) lookup(segs []string) (any, bool) {
	if len(segs) == 0 {
		return s, true
	}
	switch segs[0] {
	case "Values":
		if len(segs) == 1 {
			return s.Values, true
		}
		return nil, false
	case "Elements":
		if len(segs) < 2 {
			return nil, false
		}
		for _, e := range s.Elements {
			if e.Name == segs[1] {
				return e.lookup(segs[2:])
			}
		}
		return nil, false
	}
	if n, ok := numberedKey(segs[0], "Subset"); ok {
		if n < 1 || n > len(s.Subsets) {
			return nil, false
		}
		return s.Subsets[n-1].lookup(segs[1:])
	}
	if n, ok := numberedKey(segs[0], "Set"); ok {
		if n >= 1 && n <= len(s.Lists) && len(segs) == 1 {
			return s.Lists[n-1], true
		}
	}
	return nil, false
}

func (e *Element) lookup(segs []string) (any, bool) {
	if len(segs) == 0 {
		return e, true
	}
	if segs[0] != "Properties" {
		return nil, false
	}
	return e.Properties.lookup(segs[1:])
}

func (p Properties) lookup(segs []string) (any, bool) {
	if len(segs) == 0 {
		return p, true
	}
	switch segs[0] {
	case "Values":
		if len(segs) == 1 {
			return p.Values, true
		}
		return nil, false
	case "Results":
		return lookupMap(p.Results, segs[1:])
	}
	if n, ok := numberedKey(segs[0], "Subset"); ok {
		if n < 1 || n > len(p.Subsets) {
			return nil, false
		}
		return p.Subsets[n-1].lookup(segs[1:])
	}
	if n, ok := numberedKey(segs[0], "Set"); ok {
		if n >= 1 && n <= len(p.Lists) && len(segs) == 1 {
			return p.Lists[n-1], true
		}
	}
	return nil, false
}

func (s *Subset) lookup(segs []string) (any, bool) {
	if len(segs) == 0 {
		return s, true
	}
	if n, ok := numberedKey(segs[0], "Set"); ok {
		if n >= 1 && n <= len(s.Lists) && len(segs) == 1 {
			return s.Lists[n-1], true
		}
	}
	return nil, false
}

func lookupMap(m map[string]Value, segs []string) (any, bool) {
	if len(segs) == 0 {
		return m, true
	}
	if len(segs) > 1 {
		return nil, false
	}
	v, ok := m[segs[0]]
	return v, ok
}

// numberedKey parses a synthetic key like "SET2" or "Subset1".
func numberedKey(seg, prefix string) (int, bool) {
	if !strings.HasPrefix(seg, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(seg[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}
