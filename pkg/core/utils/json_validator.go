package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnparseable is returned by SmartParse when every strategy fails.
var ErrUnparseable = errors.New("no parsing strategy produced valid JSON")

// RepairJSON attempts to fix common JSON errors from LLM outputs: unquoted
// keys, single quotes, unclosed containers, trailing commas and comments.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("json repair: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("hjson parse: %w", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("hjson to json: %w", err)
	}
	return string(jsonBytes), nil
}

// ExtractJSON trims surrounding prose and markdown fences, returning the
// outermost {...} or [...] span when one exists.
func ExtractJSON(input string) string {
	s := CleanMarkdown(input)
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}

// SmartParse tries multiple parsing strategies to decode input into target.
// Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair
// 3. Hjson parse (most lenient)
//
// It returns the JSON text that decoded successfully.
func SmartParse(input string, target interface{}) (string, error) {
	candidate := ExtractJSON(input)

	// Try 1: Standard JSON
	if err := json.Unmarshal([]byte(candidate), target); err == nil {
		return candidate, nil
	}

	// Try 2: JSON Repair
	if repaired, err := RepairJSON(candidate); err == nil {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return repaired, nil
		}
	}

	// Try 3: Hjson
	if converted, err := ParseHJSON(candidate); err == nil {
		if err := json.Unmarshal([]byte(converted), target); err == nil {
			return converted, nil
		}
	}

	return "", ErrUnparseable
}
