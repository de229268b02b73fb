// Package fields turns ClickUp custom field values into display and export
// strings.
package fields

import (
	"strings"
	"time"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/phone"
	"github.com/spf13/cast"
)

// ListSeparator joins multi-valued fields (labels, checklists).
const ListSeparator = "; "

// Extract renders a custom field value as a string. Fields without a value
// render as "". Phone-typed fields, and text fields whose name mentions
// "phone", are normalized to E.164.
func Extract(f clickup.CustomField) string {
	if f.Value == nil {
		return ""
	}

	switch f.Type {
	case clickup.TypeEmail, clickup.TypeURL, clickup.TypeText, clickup.TypeShortText:
		return text(f)
	case clickup.TypePhone, clickup.TypePhoneNumber:
		return phone.Normalize(plainString(f.Value))
	case clickup.TypeNumber, clickup.TypeCurrency:
		return plainString(f.Value)
	case clickup.TypeDate:
		return date(f.Value)
	case clickup.TypeDropdown:
		if opt, ok := f.Value.(clickup.OptionValue); ok {
			return opt.String()
		}
		return plainString(f.Value)
	case clickup.TypeLabels:
		labels, ok := f.Value.(clickup.LabelsValue)
		if !ok {
			return ""
		}
		return join(labels, clickup.OptionValue.String)
	case clickup.TypeChecklist:
		items, ok := f.Value.(clickup.ChecklistValue)
		if !ok {
			return ""
		}
		return join(items, func(o clickup.OptionValue) string { return o.Name })
	case clickup.TypeCheckbox:
		if checked, ok := f.Value.(clickup.CheckboxValue); ok && bool(checked) {
			return "Yes"
		}
		return "No"
	default:
		return text(f)
	}
}

// HasValue reports whether f carries a value.
func HasValue(f clickup.CustomField) bool {
	return f.Value != nil
}

// Get resolves a custom field by exact, case-sensitive name. When several
// fields share the name, a field of preferredType with a value wins, then
// the first field with a value, then the first match. Get returns "" when
// no field has that name. Pass "" as preferredType for no preference.
func Get(task clickup.Task, name string, preferredType clickup.FieldType) string {
	var matches []clickup.CustomField
	for _, f := range task.CustomFields {
		if f.Name == name {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		return ""
	}

	if preferredType != "" {
		for _, f := range matches {
			if f.Type == preferredType && HasValue(f) {
				return Extract(f)
			}
		}
	}
	for _, f := range matches {
		if HasValue(f) {
			return Extract(f)
		}
	}
	return Extract(matches[0])
}

// Names returns the union of custom field names across tasks, in
// first-seen order.
func Names(tasks []clickup.Task) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tasks {
		for _, f := range t.CustomFields {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	return names
}

// LooksLikePhone reports whether a field is a phone field by type or name.
func LooksLikePhone(f clickup.CustomField) bool {
	return f.Type.IsPhone() || mentionsPhone(f.Name)
}

func text(f clickup.CustomField) string {
	s := strings.TrimSpace(plainString(f.Value))
	if mentionsPhone(f.Name) {
		return phone.Normalize(s)
	}
	return s
}

func mentionsPhone(name string) bool {
	return strings.Contains(strings.ToLower(name), "phone")
}

func date(v clickup.Value) string {
	raw := strings.TrimSpace(plainString(v))
	ms, err := cast.ToInt64E(raw)
	if err != nil {
		return raw
	}
	return time.UnixMilli(ms).UTC().Format(clickup.DateLayout)
}

func join[T ~[]clickup.OptionValue](items T, render func(clickup.OptionValue) string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, render(it))
	}
	return strings.Join(parts, ListSeparator)
}

// plainString stringifies any value variant.
func plainString(v clickup.Value) string {
	switch t := v.(type) {
	case clickup.TextValue:
		return string(t)
	case clickup.NumberValue:
		return string(t)
	case clickup.DateValue:
		return string(t)
	case clickup.OptionValue:
		return t.String()
	case clickup.CheckboxValue:
		return cast.ToString(bool(t))
	case clickup.LabelsValue:
		return join(t, clickup.OptionValue.String)
	case clickup.ChecklistValue:
		return join(t, func(o clickup.OptionValue) string { return o.Name })
	default:
		return ""
	}
}
