package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeMode selects how a raw answer value is canonicalized before
// comparison.
type NormalizeMode int

const (
	// NormalizeOption trims whitespace and strips an "A. text" style option
	// label down to its prefix before the first period. Used for choice and
	// judgment answers.
	NormalizeOption NormalizeMode = iota
	// NormalizeText trims surrounding whitespace only. Used for text,
	// fill-blank and questionnaire-mode essay answers, where a period is
	// part of the content ("3.14" must stay intact).
	NormalizeText
)

// NormalizeScalar canonicalizes one raw answer value under the given mode.
// The option-label prefix is only stripped when non-blank text follows the
// period, so a bare trailing period is left alone.
func NormalizeScalar(raw string, mode NormalizeMode) string {
	s := strings.TrimSpace(raw)
	if mode == NormalizeOption {
		if i := strings.Index(s, "."); i >= 0 && strings.TrimSpace(s[i+1:]) != "" {
			s = strings.TrimSpace(s[:i])
		}
	}
	return s
}

// NormalizeSet canonicalizes every element under the given mode and
// collapses the result into a set.
func NormalizeSet(values []string, mode NormalizeMode) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[NormalizeScalar(v, mode)] = struct{}{}
	}
	return set
}

// EqualSets reports exact membership equality between two sets. There is
// no partial credit for a partially matching selection.
func EqualSets(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// AnswerKey is the stored correct answer of a question: either a single
// accepted value (ScalarAnswer) or a list of accepted values (ListAnswer).
// The tag replaces dynamic type inspection of the stored JSON; graders
// dispatch on the concrete type and normalize through Members.
type AnswerKey interface {
	isAnswerKey()

	// Members returns the key's accepted values normalized under mode.
	Members(mode NormalizeMode) []string

	// IsEmpty reports whether the key has nothing to grade against. An
	// empty key always grades as incorrect.
	IsEmpty() bool

	// Text returns the key rendered as reference-answer text for prompts.
	Text() string
}

// ScalarAnswer is a single-valued answer key.
type ScalarAnswer string

func (ScalarAnswer) isAnswerKey() {}

func (s ScalarAnswer) Members(mode NormalizeMode) []string {
	return []string{NormalizeScalar(string(s), mode)}
}

func (s ScalarAnswer) IsEmpty() bool {
	return strings.TrimSpace(string(s)) == ""
}

func (s ScalarAnswer) Text() string {
	return string(s)
}

// ListAnswer is an answer key with multiple accepted values. For
// multiple-choice questions the list is the exact required selection; for
// other types any member counts as correct.
type ListAnswer []string

func (ListAnswer) isAnswerKey() {}

func (l ListAnswer) Members(mode NormalizeMode) []string {
	out := make([]string, 0, len(l))
	for _, v := range l {
		out = append(out, NormalizeScalar(v, mode))
	}
	return out
}

func (l ListAnswer) IsEmpty() bool {
	return len(l) == 0
}

func (l ListAnswer) Text() string {
	return strings.Join(l, "\n")
}

// ParseAnswerKey decodes a stored correct-answer JSON value into its
// tagged form. A JSON string or number becomes a ScalarAnswer, an array
// becomes a ListAnswer, and null/empty input yields a nil key.
func ParseAnswerKey(data []byte) (AnswerKey, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	v, err := decodeJSONValue(trimmed)
	if err != nil {
		return nil, fmt.Errorf("malformed answer key: %w", err)
	}

	switch t := v.(type) {
	case string:
		return ScalarAnswer(t), nil
	case json.Number:
		return ScalarAnswer(t.String()), nil
	case bool:
		return ScalarAnswer(strconv.FormatBool(t)), nil
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, e := range t {
			s, err := stringifyJSONValue(e)
			if err != nil {
				return nil, fmt.Errorf("malformed answer key element: %w", err)
			}
			items = append(items, s)
		}
		return ListAnswer(items), nil
	default:
		return nil, fmt.Errorf("unsupported answer key shape %T", t)
	}
}

// MarshalAnswerKey encodes a tagged answer key back into its stored JSON
// form. A nil key marshals to null.
func MarshalAnswerKey(key AnswerKey) ([]byte, error) {
	switch t := key.(type) {
	case nil:
		return []byte("null"), nil
	case ScalarAnswer:
		return json.Marshal(string(t))
	case ListAnswer:
		return json.Marshal([]string(t))
	default:
		return nil, fmt.Errorf("unsupported answer key type %T", key)
	}
}

// AnswerValue is a submitted answer as received from the student: free
// text, a single selected option, or a list of selected options. Numbers
// and booleans on the wire are canonicalized to their string form.
type AnswerValue struct {
	scalar string
	list   []string
	isList bool
}

// NewScalarValue builds a scalar answer value.
func NewScalarValue(s string) AnswerValue {
	return AnswerValue{scalar: s}
}

// NewListValue builds a list answer value.
func NewListValue(items []string) AnswerValue {
	return AnswerValue{list: items, isList: true}
}

// IsList reports whether the student submitted a list of values.
func (v AnswerValue) IsList() bool {
	return v.isList
}

// Scalar returns the scalar form; ok is false for list values.
func (v AnswerValue) Scalar() (string, bool) {
	if v.isList {
		return "", false
	}
	return v.scalar, true
}

// List returns the list form; ok is false for scalar values.
func (v AnswerValue) List() ([]string, bool) {
	if !v.isList {
		return nil, false
	}
	return v.list, true
}

// Text returns the free-text form used for essay grading.
func (v AnswerValue) Text() string {
	if v.isList {
		return strings.Join(v.list, ", ")
	}
	return v.scalar
}

// IsEmpty reports whether the answer carries no content.
func (v AnswerValue) IsEmpty() bool {
	if v.isList {
		return len(v.list) == 0
	}
	return strings.TrimSpace(v.scalar) == ""
}

// MarshalJSON writes the answer back in its submitted shape.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.isList {
		if v.list == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.scalar)
}

// UnmarshalJSON accepts a string, number, boolean, or array of those.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAnswerValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseAnswerValue decodes a submitted answer JSON value into its tagged
// form.
func ParseAnswerValue(data []byte) (AnswerValue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return AnswerValue{}, nil
	}

	raw, err := decodeJSONValue(trimmed)
	if err != nil {
		return AnswerValue{}, fmt.Errorf("malformed answer value: %w", err)
	}

	switch t := raw.(type) {
	case string:
		return NewScalarValue(t), nil
	case json.Number:
		return NewScalarValue(t.String()), nil
	case bool:
		return NewScalarValue(strconv.FormatBool(t)), nil
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, e := range t {
			s, err := stringifyJSONValue(e)
			if err != nil {
				return AnswerValue{}, fmt.Errorf("malformed answer element: %w", err)
			}
			items = append(items, s)
		}
		return NewListValue(items), nil
	default:
		return AnswerValue{}, fmt.Errorf("unsupported answer value shape %T", t)
	}
}

func decodeJSONValue(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func stringifyJSONValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported element type %T", t)
	}
}
