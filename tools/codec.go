package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// decodeInput converts raw model arguments into T, checking that every required
// top-level field is present first.
func decodeInput[T any](input json.RawMessage, required []string) (T, error) {
	var zero T
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	var fields map[string]jsoniter.RawMessage
	if err := codec.Unmarshal(input, &fields); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	var missing []string
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return zero, fmt.Errorf("%w: missing required field(s) %s", ErrInvalidArguments, strings.Join(missing, ", "))
	}

	var v T
	if err := codec.Unmarshal(input, &v); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return v, nil
}

// render encodes a handler result as compact JSON.
func render(v any) (string, error) {
	b, err := codec.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("render result: %w", err)
	}
	return string(b), nil
}
