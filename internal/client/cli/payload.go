package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parsePayload собирает JSON объект из --data и аргументов key=value.
// --data принимает JSON строку или @path к файлу; пары key=value
// дополняют и перекрывают поля из --data.
func parsePayload(data string, pairs []string) (map[string]any, error) {
	payload := map[string]any{}

	if data != "" {
		raw := []byte(data)
		if path, ok := strings.CutPrefix(data, "@"); ok {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read payload file: %w", err)
			}
			raw = content
		}

		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}
		payload[key] = parseValue(value)
	}

	return payload, nil
}

// parseValue приводит числа и булевы значения к JSON типам
func parseValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// parseHeaders разбирает значения --header "Name: value"
func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", v)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
