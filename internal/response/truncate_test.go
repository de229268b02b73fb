package response

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

type testItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

type testPayload struct {
	Tasks []testItem `json:"tasks"`
	Meta  string     `json:"meta"`
}

func makeItems(n int) []testItem {
	items := make([]testItem, n)
	for i := range items {
		items[i] = testItem{
			ID:   fmt.Sprintf("t%d", i),
			Name: fmt.Sprintf("Task %d", i),
			Body: strings.Repeat("lorem ipsum ", 10),
		}
	}
	return items
}

func mustIndent(t *testing.T, v any) string {
	t.Helper()
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	return string(b)
}

// --- no-op ---

func TestTruncate_UnderLimitIsNoop(t *testing.T) {
	content := strings.Repeat("a", 100000)
	got := Truncate(content, 5, "tasks", 100000)
	if got.Truncation != nil {
		t.Fatalf("Truncation = %+v, want nil", got.Truncation)
	}
	if got.Content != content {
		t.Error("content changed")
	}
	if got.Footer() != "" {
		t.Errorf("Footer() = %q, want empty", got.Footer())
	}
}

func TestTruncate_OneOverLimit(t *testing.T) {
	content := strings.Repeat("a", 100001)
	got := Truncate(content, 5, "tasks", 100000)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}
	if n := utf8.RuneCountInString(got.Content); n > 100000 {
		t.Errorf("len = %d, want <= 100000", n)
	}
	if got.Truncation.ReturnedCount > got.Truncation.OriginalCount {
		t.Errorf("returned %d > original %d", got.Truncation.ReturnedCount, got.Truncation.OriginalCount)
	}
}

func TestTruncate_CountsCharactersNotBytes(t *testing.T) {
	content := strings.Repeat("é", 100)
	if got := Truncate(content, 1, "tasks", 100); got.Truncation != nil {
		t.Errorf("100 runes within a 100 limit should not truncate")
	}

	got := Truncate(strings.Repeat("é", 150), 1, "tasks", 100)
	if got.Content != strings.Repeat("é", 100) {
		t.Errorf("hard cut should keep exactly 100 runes, got %d", utf8.RuneCountInString(got.Content))
	}
}

// --- JSON strategy ---

func TestTruncate_JSONDropsTrailingItems(t *testing.T) {
	items := makeItems(10)
	content := mustIndent(t, testPayload{Tasks: items, Meta: "page 1"})
	limit := len(mustIndent(t, testPayload{Tasks: items[:4], Meta: "page 1"})) + 5

	got := Truncate(content, len(items), "tasks", limit)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}
	if len(got.Content) > limit {
		t.Errorf("len = %d, want <= %d", len(got.Content), limit)
	}

	var back testPayload
	if err := json.Unmarshal([]byte(got.Content), &back); err != nil {
		t.Fatalf("truncated JSON invalid: %v", err)
	}
	if len(back.Tasks) != 4 {
		t.Errorf("kept %d tasks, want 4", len(back.Tasks))
	}
	if back.Tasks[3].ID != "t3" {
		t.Errorf("last kept = %q, want t3 (items dropped from the end)", back.Tasks[3].ID)
	}
	if back.Meta != "page 1" {
		t.Errorf("meta = %q, other members must be preserved", back.Meta)
	}
	if strings.Index(got.Content, `"tasks"`) > strings.Index(got.Content, `"meta"`) {
		t.Error("member order should be preserved")
	}

	info := got.Truncation
	if info.OriginalCount != 10 || info.ReturnedCount != 4 || !info.Truncated {
		t.Errorf("info = %+v", info)
	}
	want := fmt.Sprintf("Response truncated from 10 to 4 tasks due to size limits (%d chars). "+
		"Use pagination (offset/limit), add filters, or use response_mode='compact' to see more results.", limit)
	if info.Message != want {
		t.Errorf("Message =\n  %q\nwant:\n  %q", info.Message, want)
	}
}

func TestTruncate_JSONReserializedFitsWithoutDropping(t *testing.T) {
	content := `{"tasks":[1,2]}` + strings.Repeat(" ", 500)
	got := Truncate(content, 2, "tasks", 100)
	if got.Truncation != nil {
		t.Errorf("Truncation = %+v, want nil", got.Truncation)
	}
	want := "{\n  \"tasks\": [\n    1,\n    2\n  ]\n}"
	if got.Content != want {
		t.Errorf("Content = %q, want %q", got.Content, want)
	}
}

func TestTruncate_JSONShortensLargeFields(t *testing.T) {
	item := map[string]any{"id": "1", "description": strings.Repeat("x", 30000)}
	content := mustIndent(t, map[string]any{"tasks": []any{item}})

	got := Truncate(content, 1, "tasks", 12000)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}
	if got.Truncation.ReturnedCount != 1 || got.Truncation.OriginalCount != 1 {
		t.Errorf("info = %+v", got.Truncation)
	}
	if !strings.Contains(got.Truncation.Message, "shortened") {
		t.Errorf("message should mention shortened fields: %q", got.Truncation.Message)
	}

	var back struct {
		Tasks []map[string]string `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(got.Content), &back); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	desc := back.Tasks[0]["description"]
	if desc != strings.Repeat("x", MaxFieldLength)+FieldTruncationMarker {
		t.Errorf("description len = %d, want %d chars plus marker", len(desc), MaxFieldLength)
	}
	if back.Tasks[0]["id"] != "1" {
		t.Error("short fields must be kept")
	}
}

func TestTruncate_JSONShrinksToOneThenShortens(t *testing.T) {
	big := map[string]any{"id": "0", "notes": strings.Repeat("y", 25000)}
	small := map[string]any{"id": "1", "notes": "short"}
	content := mustIndent(t, map[string]any{"tasks": []any{big, small, small}})

	got := Truncate(content, 3, "tasks", 11000)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}
	if got.Truncation.OriginalCount != 3 || got.Truncation.ReturnedCount != 1 {
		t.Errorf("info = %+v", got.Truncation)
	}
	if !json.Valid([]byte(got.Content)) {
		t.Error("content should stay valid JSON")
	}
}

func TestTruncate_JSONStillTooLargeFallsBackToHardLimit(t *testing.T) {
	item := map[string]any{}
	for i := 0; i < 5; i++ {
		item[fmt.Sprintf("f%d", i)] = strings.Repeat("z", 9000)
	}
	content := mustIndent(t, map[string]any{"tasks": []any{item}})

	got := Truncate(content, 1, "tasks", 20000)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}
	if n := utf8.RuneCountInString(got.Content); n > 20000 {
		t.Errorf("len = %d, want <= 20000", n)
	}
	if !strings.HasPrefix(content, got.Content) {
		t.Error("markdown fallback should cut the original content")
	}
}

func TestTruncate_JSONWithoutCollectionFallsBack(t *testing.T) {
	tests := map[string]string{
		"no array member": `{"text":"` + strings.Repeat("a", 3000) + `"}`,
		"top-level array": `[` + strings.Repeat(`"a",`, 1000) + `"a"]`,
		"malformed":       `{"tasks":[` + strings.Repeat("a", 3000),
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			got := Truncate(content, 3, "tasks", 1000)
			if got.Truncation == nil {
				t.Fatal("expected truncation")
			}
			if len(got.Content) > 1000 {
				t.Errorf("len = %d, want <= 1000", len(got.Content))
			}
			if !strings.HasPrefix(content, got.Content) {
				t.Error("fallback should cut the original text")
			}
		})
	}
}

func TestTruncate_LeadingWhitespaceStillJSON(t *testing.T) {
	content := "\n  " + mustIndent(t, testPayload{Tasks: makeItems(10)})
	got := Truncate(content, 10, "tasks", 800)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}
	if !json.Valid([]byte(got.Content)) {
		t.Errorf("expected JSON strategy, got %q", got.Content)
	}
}

// --- Markdown strategy ---

func markdownSections(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "# Task %d (id%d)\n\n%s\n\n", i, i, strings.Repeat("word ", 40))
	}
	return b.String()
}

func TestTruncate_MarkdownCutsAtSectionBoundary(t *testing.T) {
	content := markdownSections(20)
	got := Truncate(content, 20, "tasks", 1000)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}

	kept := got.Content
	if len(kept) > 1000 {
		t.Fatalf("len = %d, want <= 1000", len(kept))
	}
	if !strings.HasPrefix(content, kept) {
		t.Fatal("kept text must be a prefix of the original")
	}
	if content[len(kept)] != '\n' {
		t.Errorf("cut should land on a boundary, next char = %q", content[len(kept)])
	}

	headers := strings.Count(kept, "# Task ")
	if got.Truncation.ReturnedCount != headers {
		t.Errorf("ReturnedCount = %d, want %d headers", got.Truncation.ReturnedCount, headers)
	}
	if got.Truncation.OriginalCount != 20 {
		t.Errorf("OriginalCount = %d, want 20", got.Truncation.OriginalCount)
	}
}

func TestTruncate_MarkdownPrefersLatestBoundary(t *testing.T) {
	content := strings.Repeat("a", 600) + "\n## Section\n" + strings.Repeat("b", 200) + "\n---\n" + strings.Repeat("c", 800)
	got := Truncate(content, 1, "tasks", 1000)
	want := strings.Repeat("a", 600) + "\n## Section\n" + strings.Repeat("b", 200)
	if got.Content != want {
		t.Errorf("cut at %d, want %d (the --- line)", len(got.Content), len(want))
	}
}

func TestTruncate_MarkdownNewlineFallback(t *testing.T) {
	content := strings.Repeat("a", 1200) + "\n" + strings.Repeat("b", 800)
	got := Truncate(content, 4, "tasks", 1500)
	if got.Content != strings.Repeat("a", 1200) {
		t.Errorf("cut at %d, want 1200", len(got.Content))
	}
}

func TestTruncate_MarkdownBoundaryOutsideWindowHardCuts(t *testing.T) {
	content := strings.Repeat("a", 100) + "\n\n" + strings.Repeat("b", 2000)
	got := Truncate(content, 4, "tasks", 1500)
	if len(got.Content) != 1500 {
		t.Errorf("len = %d, want hard cut at 1500", len(got.Content))
	}
}

func TestTruncate_MarkdownProportionalEstimate(t *testing.T) {
	content := strings.Repeat("a", 2000)
	got := Truncate(content, 10, "tasks", 1000)
	if got.Truncation.ReturnedCount != 5 {
		t.Errorf("ReturnedCount = %d, want 5", got.Truncation.ReturnedCount)
	}

	got = Truncate(content, 1, "tasks", 10)
	if got.Truncation.ReturnedCount != 1 {
		t.Errorf("ReturnedCount = %d, want at least 1", got.Truncation.ReturnedCount)
	}
}

func TestTruncate_MarkdownEmptyCollection(t *testing.T) {
	got := Truncate(strings.Repeat("a", 50), 0, "tasks", 10)
	if got.Truncation.ReturnedCount != 0 || got.Truncation.OriginalCount != 0 {
		t.Errorf("info = %+v, returned must not exceed original", got.Truncation)
	}
}

func TestTruncationMessage(t *testing.T) {
	got := TruncationMessage(50, 12, "tasks", 100000)
	want := "Response truncated from 50 to 12 tasks due to size limits (100000 chars). " +
		"Use pagination (offset/limit), add filters, or use response_mode='compact' to see more results."
	if got != want {
		t.Errorf("TruncationMessage() =\n  %q\nwant:\n  %q", got, want)
	}
}

func TestTruncate_JSONShortenKeepsEscapedKeys(t *testing.T) {
	item := map[string]any{"id": "1", `a"b`: strings.Repeat("a", 20000), `c\d`: "x"}
	content := mustIndent(t, map[string]any{"tasks": []any{item}})

	got := Truncate(content, 1, "tasks", 15000)
	if got.Truncation == nil {
		t.Fatal("expected truncation")
	}
	if !strings.Contains(got.Truncation.Message, "shortened") {
		t.Errorf("expected field shortening, got %q", got.Truncation.Message)
	}

	var back struct {
		Tasks []map[string]string `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(got.Content), &back); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, got.Content[:200])
	}
	if v := back.Tasks[0][`a"b`]; v != strings.Repeat("a", MaxFieldLength)+FieldTruncationMarker {
		t.Errorf(`"a\"b" len = %d`, len(v))
	}
	if v := back.Tasks[0][`c\d`]; v != "x" {
		t.Errorf(`"c\\d" = %q, want "x"`, v)
	}
}
