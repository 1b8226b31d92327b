package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoObject = errors.New("jsonutil: no JSON object in text")

// ExtractObject returns the substring between the first '{' and the last '}'.
// Models often wrap their JSON in commentary; this trims it off.
func ExtractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// UnmarshalObject decodes the JSON object embedded in text into v. When no
// braces are found the whole text is tried as JSON.
func UnmarshalObject(text string, v any) error {
	if obj, ok := ExtractObject(text); ok {
		return UnmarshalFlex([]byte(obj), v)
	}
	if strings.TrimSpace(text) == "" {
		return ErrNoObject
	}
	return UnmarshalFlex([]byte(text), v)
}

// UnmarshalFlex tries a direct unmarshal first, then unwraps a JSON string
// that itself contains the encoded object.
func UnmarshalFlex(raw []byte, v any) error {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return json.Unmarshal([]byte(s), v)
	}
	return err
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into \u003c, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
