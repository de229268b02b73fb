package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

const (
	// MaxFieldLength is the longest string property kept intact when a
	// single JSON item alone exceeds the budget.
	MaxFieldLength = 10000

	// FieldTruncationMarker is appended to shortened string properties.
	FieldTruncationMarker = "... [truncated]"

	// boundaryWindow is how far back from the limit the markdown strategy
	// looks for a section boundary.
	boundaryWindow = 1000

	jsonIndent = "  "
)

// markdownBoundaries are the cut points the markdown strategy prefers,
// searched for their latest occurrence before the limit.
var markdownBoundaries = []string{"\n# ", "\n## ", "\n---\n", "\n\n"}

// itemHeaderPattern matches the top-level "# Name (id)" header rendered
// once per item.
var itemHeaderPattern = regexp.MustCompile(`(?m)^# .+ \(`)

// Info reports what a truncation dropped. ReturnedCount never exceeds
// OriginalCount and is at least 1 for a non-empty collection.
type Info struct {
	Truncated     bool   `json:"truncated"`
	OriginalCount int    `json:"original_count"`
	ReturnedCount int    `json:"returned_count"`
	Message       string `json:"truncation_message"`
}

// Truncated is the result of Truncate. Truncation is nil when nothing was
// dropped.
type Truncated struct {
	Content    string
	Truncation *Info
}

// Footer renders the truncation notice appended to tool output, or "".
func (t Truncated) Footer() string {
	if t.Truncation == nil {
		return ""
	}
	return "\n\n⚠️ " + t.Truncation.Message
}

// Truncate bounds content to limit characters while keeping it
// structurally valid. Content whose first non-blank character is '{' or
// '[' is treated as JSON and shrunk item by item; everything else, and any
// JSON that cannot be shrunk to fit, is cut at a markdown section
// boundary. itemCount and itemLabel describe the collection for the
// truncation message.
func Truncate(content string, itemCount int, itemLabel string, limit int) Truncated {
	if utf8.RuneCountInString(content) <= limit {
		return Truncated{Content: content}
	}

	trimmed := strings.TrimLeft(content, " \t\r\n")
	if trimmed != "" && (trimmed[0] == '{' || trimmed[0] == '[') {
		if out, ok := truncateJSON(trimmed, itemLabel, limit); ok {
			return out
		}
	}
	return truncateMarkdown(content, itemCount, itemLabel, limit)
}

// TruncationMessage is the notice reported when items were dropped.
func TruncationMessage(original, returned int, itemLabel string, limit int) string {
	return fmt.Sprintf("Response truncated from %d to %d %s due to size limits (%d chars). "+
		"Use pagination (offset/limit), add filters, or use response_mode='compact' to see more results.",
		original, returned, itemLabel, limit)
}

func fieldTruncationMessage(original int, itemLabel string, limit int) string {
	return fmt.Sprintf("Response truncated from %d to 1 %s due to size limits (%d chars). "+
		"Text fields longer than %d characters were shortened. "+
		"Use pagination (offset/limit), add filters, or use response_mode='compact' to see more results.",
		original, itemLabel, limit, MaxFieldLength)
}

// ─── JSON strategy ──────────────────────────────────────────────────────────

// collection is a top-level JSON object split into its members, with the
// first array-valued member ("collection key") split into items.
type collection struct {
	keys   []string
	values [][]byte
	index  int
	items  [][]byte
}

// parseCollection reports ok=false when data is not an object with an
// array-valued member.
func parseCollection(data []byte) (*collection, bool) {
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return nil, false
	}

	c := &collection{index: -1}
	err := jsonparser.ObjectEach(data, func(key, value []byte, dt jsonparser.ValueType, _ int) error {
		name := string(key)
		if dt == jsonparser.Array && c.index < 0 {
			c.index = len(c.keys)
			items, err := splitArray(value)
			if err != nil {
				return err
			}
			c.items = items
		}
		c.keys = append(c.keys, name)
		c.values = append(c.values, rawValue(value, dt))
		return nil
	})
	if err != nil || c.index < 0 {
		return nil, false
	}
	return c, true
}

func splitArray(data []byte) ([][]byte, error) {
	var items [][]byte
	var inner error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dt jsonparser.ValueType, _ int, err error) {
		if err != nil {
			inner = err
			return
		}
		items = append(items, rawValue(value, dt))
	})
	if err != nil {
		return nil, err
	}
	return items, inner
}

// rawValue restores the quotes jsonparser strips from string values.
func rawValue(value []byte, dt jsonparser.ValueType) []byte {
	if dt != jsonparser.String {
		return value
	}
	out := make([]byte, 0, len(value)+2)
	out = append(out, '"')
	out = append(out, value...)
	return append(out, '"')
}

// render serializes the object keeping only the first n items, indented
// with two spaces.
func (c *collection) render(n int) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(quote(k))
		buf.WriteByte(':')
		if i != c.index {
			buf.Write(c.values[i])
			continue
		}
		buf.WriteByte('[')
		for j, item := range c.items[:n] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(item)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", jsonIndent); err != nil {
		return "", err
	}
	return out.String(), nil
}

func truncateJSON(content, itemLabel string, limit int) (Truncated, bool) {
	c, ok := parseCollection([]byte(content))
	if !ok {
		return Truncated{}, false
	}

	original := len(c.items)
	n := original
	out, err := c.render(n)
	if err != nil {
		return Truncated{}, false
	}
	for utf8.RuneCountInString(out) > limit && n > 1 {
		n--
		if out, err = c.render(n); err != nil {
			return Truncated{}, false
		}
	}

	if utf8.RuneCountInString(out) <= limit {
		if n == original {
			return Truncated{Content: out}, true
		}
		return Truncated{
			Content: out,
			Truncation: &Info{
				Truncated:     true,
				OriginalCount: original,
				ReturnedCount: n,
				Message:       TruncationMessage(original, n, itemLabel, limit),
			},
		}, true
	}

	if n != 1 {
		return Truncated{}, false
	}

	c.items[0] = shortenFields(c.items[0])
	if out, err = c.render(1); err != nil || utf8.RuneCountInString(out) > limit {
		return Truncated{}, false
	}
	return Truncated{
		Content: out,
		Truncation: &Info{
			Truncated:     true,
			OriginalCount: original,
			ReturnedCount: 1,
			Message:       fieldTruncationMessage(original, itemLabel, limit),
		},
	}, true
}

// shortenFields cuts every top-level string property of an object item
// longer than MaxFieldLength. Non-object items are returned unchanged.
func shortenFields(item []byte) []byte {
	if len(item) == 0 || item[0] != '{' {
		return item
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	err := jsonparser.ObjectEach(item, func(key, value []byte, dt jsonparser.ValueType, _ int) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		// ObjectEach hands over keys already unescaped.
		buf.Write(quote(string(key)))
		buf.WriteByte(':')

		if dt != jsonparser.String {
			buf.Write(value)
			return nil
		}
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		if utf8.RuneCountInString(s) <= MaxFieldLength {
			buf.Write(rawValue(value, dt))
			return nil
		}
		buf.Write(quote(string([]rune(s)[:MaxFieldLength]) + FieldTruncationMarker))
		return nil
	})
	if err != nil {
		return item
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// ─── Markdown strategy ──────────────────────────────────────────────────────

func truncateMarkdown(content string, itemCount int, itemLabel string, limit int) Truncated {
	runes := []rune(content)
	if limit < 0 {
		limit = 0
	}
	head := string(runes[:limit])
	windowStart := len(string(runes[:max(0, limit-boundaryWindow)]))

	cut := -1
	for _, b := range markdownBoundaries {
		if i := strings.LastIndex(head, b); i > 0 && i >= windowStart && i > cut {
			cut = i
		}
	}
	if cut < 0 {
		if i := strings.LastIndex(head, "\n"); i > 0 && i >= windowStart {
			cut = i
		}
	}
	if cut < 0 {
		cut = len(head)
	}
	kept := head[:cut]

	returned := len(itemHeaderPattern.FindAllStringIndex(kept, -1))
	if returned == 0 {
		returned = max(1, itemCount*utf8.RuneCountInString(kept)/len(runes))
	}
	returned = min(returned, max(itemCount, 0))

	return Truncated{
		Content: kept,
		Truncation: &Info{
			Truncated:     true,
			OriginalCount: itemCount,
			ReturnedCount: returned,
			Message:       TruncationMessage(itemCount, returned, itemLabel, limit),
		},
	}
}
