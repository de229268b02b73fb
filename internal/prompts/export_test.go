package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Messages[0].Content)
	}
	return tc.Text
}

func TestExportPrompt(t *testing.T) {
	p := NewExportPrompt()
	if got := p.Definition().Name; got != "clickup-export" {
		t.Errorf("name = %q", got)
	}

	tests := []struct {
		name string
		args map[string]string
		want []string
	}{
		{
			name: "workspace",
			args: nil,
			want: []string{"the whole workspace", "add_phone_column=true"},
		},
		{
			name: "list and statuses",
			args: map[string]string{"list_id": "901", "statuses": "open, won"},
			want: []string{"list `901`", `list_id="901"`, `statuses="open, won"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.GetPromptRequest{}
			req.Params.Arguments = tt.args
			res, err := p.Handle(context.Background(), req)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			text := promptText(t, res)
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("prompt missing %q:\n%s", w, text)
				}
			}
		})
	}
}
