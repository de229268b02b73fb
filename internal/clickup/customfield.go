package clickup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// FieldType is the custom field type vocabulary the server understands.
// Unknown types decode as text.
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeShortText   FieldType = "short_text"
	TypeEmail       FieldType = "email"
	TypeURL         FieldType = "url"
	TypePhone       FieldType = "phone"
	TypePhoneNumber FieldType = "phone_number"
	TypeNumber      FieldType = "number"
	TypeCurrency    FieldType = "currency"
	TypeDate        FieldType = "date"
	TypeDropdown    FieldType = "dropdown"
	TypeLabels      FieldType = "labels"
	TypeChecklist   FieldType = "checklist"
	TypeCheckbox    FieldType = "checkbox"
)

// typeAliases maps the spellings the API uses onto the local vocabulary.
var typeAliases = map[string]FieldType{
	"drop_down": TypeDropdown,
}

// IsPhone reports whether t is one of the dedicated phone field types.
func (t FieldType) IsPhone() bool {
	return t == TypePhone || t == TypePhoneNumber
}

// CustomField is one user-defined typed attribute on a task. Several fields
// on the same task may share a Name; ID and Type tell them apart.
//
// Value is nil when the field has no value (absent, null or "").
type CustomField struct {
	ID    string
	Name  string
	Type  FieldType
	Value Value

	raw json.RawMessage
}

// Value is the decoded value of a custom field. The concrete type is fixed
// by the field's Type:
//
//	text, short_text, email, url, phone, phone_number, unknown -> TextValue
//	number, currency                                          -> NumberValue
//	date                                                      -> DateValue
//	dropdown                                                  -> OptionValue
//	labels                                                    -> LabelsValue
//	checklist                                                 -> ChecklistValue
//	checkbox                                                  -> CheckboxValue
type Value interface {
	plain() any
}

// TextValue is a free-text value.
type TextValue string

// NumberValue is a numeric literal kept exactly as the API sent it.
type NumberValue string

// DateValue is an epoch-millisecond timestamp kept as sent.
type DateValue string

// OptionValue is a dropdown option or a label. Raw holds the scalar form
// when the API sent a bare string or index instead of an object.
type OptionValue struct {
	Label string `json:"label,omitempty"`
	Name  string `json:"name,omitempty"`
	Raw   string `json:"-"`
}

// LabelsValue is the selection of a labels field. A non-array value
// decodes as an empty selection.
type LabelsValue []OptionValue

// ChecklistValue is the item list of a checklist field.
type ChecklistValue []OptionValue

// CheckboxValue is the state of a checkbox field.
type CheckboxValue bool

func (v TextValue) plain() any   { return string(v) }
func (v NumberValue) plain() any { return json.Number(v) }
func (v DateValue) plain() any   { return string(v) }
func (v CheckboxValue) plain() any {
	return bool(v)
}

func (v OptionValue) plain() any {
	if v.Label == "" && v.Name == "" {
		return v.Raw
	}
	return v
}

func (v LabelsValue) plain() any {
	out := make([]any, 0, len(v))
	for _, o := range v {
		out = append(out, o.plain())
	}
	return out
}

func (v ChecklistValue) plain() any {
	return LabelsValue(v).plain()
}

// String renders the option the way the API's UI would: label, then name,
// then the raw scalar.
func (v OptionValue) String() string {
	switch {
	case v.Label != "":
		return v.Label
	case v.Name != "":
		return v.Name
	default:
		return v.Raw
	}
}

type customFieldJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// UnmarshalJSON decodes the field and its value variant keyed by type.
func (f *CustomField) UnmarshalJSON(data []byte) error {
	var aux customFieldJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	typ := FieldType(aux.Type)
	if alias, ok := typeAliases[aux.Type]; ok {
		typ = alias
	}

	value, err := decodeValue(typ, aux.Value)
	if err != nil {
		return fmt.Errorf("custom field %q (%s): %w", aux.Name, aux.Type, err)
	}

	*f = CustomField{
		ID:    aux.ID,
		Name:  aux.Name,
		Type:  typ,
		Value: value,
		raw:   aux.Value,
	}
	return nil
}

// MarshalJSON re-emits the value exactly as it was received; fields built
// in code marshal their decoded value.
func (f CustomField) MarshalJSON() ([]byte, error) {
	aux := customFieldJSON{ID: f.ID, Name: f.Name, Type: string(f.Type)}
	switch {
	case len(f.raw) > 0:
		aux.Value = f.raw
	case f.Value != nil:
		b, err := json.Marshal(f.Value.plain())
		if err != nil {
			return nil, err
		}
		aux.Value = b
	}
	return json.Marshal(aux)
}

func decodeValue(typ FieldType, raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, nil
	}

	switch typ {
	case TypeNumber, TypeCurrency:
		return NumberValue(scalarString(v, raw)), nil
	case TypeDate:
		return DateValue(scalarString(v, raw)), nil
	case TypeDropdown:
		return decodeOption(v, raw), nil
	case TypeLabels:
		return LabelsValue(decodeOptions(v)), nil
	case TypeChecklist:
		return ChecklistValue(decodeOptions(v)), nil
	case TypeCheckbox:
		return CheckboxValue(truthy(v)), nil
	default:
		return TextValue(scalarString(v, raw)), nil
	}
}

// scalarString stringifies a decoded JSON value. Objects and arrays keep
// their compact JSON text.
func scalarString(v any, raw json.RawMessage) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any, []any:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	default:
		return cast.ToString(t)
	}
}

func decodeOption(v any, raw json.RawMessage) OptionValue {
	m, ok := v.(map[string]any)
	if !ok {
		return OptionValue{Raw: scalarString(v, raw)}
	}
	opt := OptionValue{
		Label: cast.ToString(m["label"]),
		Name:  cast.ToString(m["name"]),
	}
	if opt.Label == "" && opt.Name == "" {
		b, _ := json.Marshal(m)
		opt.Raw = string(b)
	}
	return opt
}

func decodeOptions(v any) []OptionValue {
	items, ok := v.([]any)
	if !ok {
		return []OptionValue{}
	}
	out := make([]OptionValue, 0, len(items))
	for _, item := range items {
		b, _ := json.Marshal(item)
		out = append(out, decodeOption(item, b))
	}
	return out
}

// truthy follows the API's loose checkbox encoding: booleans, "true"/"false"
// strings and 0/1 numbers. Any other non-empty string counts as checked.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		b, err := cast.ToBoolE(strings.TrimSpace(t))
		if err != nil {
			return true
		}
		return b
	case nil:
		return false
	default:
		return true
	}
}
