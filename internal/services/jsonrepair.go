package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

var (
	reasoningRe     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFenceRe     = regexp.MustCompile("(?s)```[a-zA-Z]*\n?|```")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]+`)
)

// CleanModelOutput strips reasoning traces, markdown code fences, trailing
// commas and raw control characters from generated text. Every step is purely
// textual; running it over already-clean JSON is a no-op.
func CleanModelOutput(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = codeFenceRe.ReplaceAllString(text, "")
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = controlCharRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// RecoverJSON extracts a single JSON value (object or array) from free-form
// generated text. The whole cleaned text is tried first; on failure the
// first-to-last delimiter substring is tried, preferring an array pair when
// it starts no later than any object pair, since list-style answers are the
// common top-level shape.
func RecoverJSON(text string) (interface{}, error) {
	cleaned := CleanModelOutput(text)

	var value interface{}
	if err := json.Unmarshal([]byte(cleaned), &value); err == nil {
		return value, nil
	}

	startObj := strings.Index(cleaned, "{")
	endObj := strings.LastIndex(cleaned, "}")
	startArr := strings.Index(cleaned, "[")
	endArr := strings.LastIndex(cleaned, "]")

	candidates := []string{}
	objOK := startObj != -1 && endObj > startObj
	arrOK := startArr != -1 && endArr > startArr

	switch {
	case arrOK && (!objOK || startArr <= startObj):
		candidates = append(candidates, cleaned[startArr:endArr+1])
		if objOK {
			candidates = append(candidates, cleaned[startObj:endObj+1])
		}
	case objOK:
		candidates = append(candidates, cleaned[startObj:endObj+1])
		if arrOK {
			candidates = append(candidates, cleaned[startArr:endArr+1])
		}
	}

	for _, candidate := range candidates {
		candidate = trailingCommaRe.ReplaceAllString(candidate, "$1")
		if err := json.Unmarshal([]byte(candidate), &value); err == nil {
			return value, nil
		}
	}

	return nil, fmt.Errorf("%w in generated text", models.ErrParse)
}

// RecoverJSONInto recovers a JSON value from text and decodes it into target,
// rejecting values whose shape does not fit. Unknown keys are tolerated;
// missing structure surfaces when the caller validates the decoded record.
func RecoverJSONInto(text string, target interface{}) error {
	value, err := RecoverJSON(text)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrSchema, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", models.ErrSchema, err)
	}

	return nil
}
