package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes common hand-editing mistakes in a JSON document:
// unquoted keys, single quotes, trailing commas, comments, unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("failed to repair json: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("failed to parse hjson: %w", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal hjson result: %w", err)
	}
	return string(out), nil
}

// SmartDecode decodes input over a copy of base, trying in order:
//  1. Standard JSON
//  2. Hjson (unquoted keys, comments, trailing commas)
//  3. JSON repair, for input Hjson rejects
//
// Repair runs last because it accepts Hjson text without understanding it and
// rewrites floats at single precision.
//
// Fields absent from input keep their value from base. Each attempt starts from a
// fresh copy so a failed strategy never leaves partial writes behind.
func SmartDecode[T any](input string, base T) (T, error) {
	if strings.TrimSpace(input) == "" {
		return base, nil
	}

	// Try 1: Standard JSON
	v := base
	if err := json.Unmarshal([]byte(input), &v); err == nil {
		return v, nil
	}

	// Try 2: Hjson
	if converted, err := ParseHJSON(input); err == nil {
		v = base
		if err := json.Unmarshal([]byte(converted), &v); err == nil {
			return v, nil
		}
	}

	// Try 3: JSON Repair
	if repaired, err := RepairJSON(input); err == nil {
		v = base
		if err := json.Unmarshal([]byte(repaired), &v); err == nil {
			return v, nil
		}
	}

	return base, fmt.Errorf("failed to decode input: all parsing strategies failed")
}
