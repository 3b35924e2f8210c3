package rewriter

import (
	"encoding/json"
	"regexp"
	"strings"
)

// payload is the expected shape of the backend response.
type payload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p *payload) complete() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Content) != ""
}

// parseStrategy is one attempt at recovering the payload from raw text.
type parseStrategy struct {
	name string
	fn   func(raw string) (*payload, bool)
}

// parseStrategies are tried in order; the first that yields both fields
// wins. The later strategies trade strictness for recovery of responses the
// backend mangled with markdown fences, smart quotes or trailing commas.
var parseStrategies = []parseStrategy{
	{name: "direct", fn: parseDirect},
	{name: "brace_repair", fn: parseBraceRepair},
	{name: "field_regex", fn: parseFieldRegex},
}

// parseResponse walks the recovery strategies and returns the payload plus
// the name of the strategy that succeeded.
func parseResponse(raw string) (*payload, string, error) {
	for _, strat := range parseStrategies {
		if p, ok := strat.fn(raw); ok {
			return p, strat.name, nil
		}
	}
	return nil, "", &ParseError{Raw: raw}
}

// parseDirect parses the raw response as JSON verbatim.
func parseDirect(raw string) (*payload, bool) {
	var p payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &p); err != nil {
		return nil, false
	}
	if !p.complete() {
		return nil, false
	}
	return &p, true
}

// parseBraceRepair extracts the first top-level {...} block by brace
// matching, normalizes curly quotes and strips trailing commas, then parses.
func parseBraceRepair(raw string) (*payload, bool) {
	block, ok := firstJSONBlock(raw)
	if !ok {
		return nil, false
	}
	block = normalizeQuotes(block)
	block = trailingCommaPattern.ReplaceAllString(block, "$1")

	var p payload
	if err := json.Unmarshal([]byte(block), &p); err != nil {
		return nil, false
	}
	if !p.complete() {
		return nil, false
	}
	return &p, true
}

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// firstJSONBlock returns the first balanced top-level brace block, tracking
// string state so braces inside values do not confuse the depth count.
func firstJSONBlock(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
	}
	return "", false
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double curly
	"”", `"`, // right double curly
	"„", `"`,
	"‘", "'",
	"’", "'",
)

func normalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

var (
	titleFieldPattern   = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	contentFieldPattern = regexp.MustCompile(`"content"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// parseFieldRegex pulls the two expected fields straight out of the text as
// a last resort, undoing JSON string escapes by hand.
func parseFieldRegex(raw string) (*payload, bool) {
	tm := titleFieldPattern.FindStringSubmatch(raw)
	cm := contentFieldPattern.FindStringSubmatch(raw)
	if tm == nil || cm == nil {
		return nil, false
	}

	p := payload{
		Title:   unescapeJSONString(tm[1]),
		Content: unescapeJSONString(cm[1]),
	}
	if !p.complete() {
		return nil, false
	}
	return &p, true
}

var escapeReplacer = strings.NewReplacer(
	`\"`, `"`,
	`\n`, "\n",
	`\t`, "\t",
	`\\`, `\`,
)

func unescapeJSONString(s string) string {
	return escapeReplacer.Replace(s)
}
