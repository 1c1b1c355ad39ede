package classifier

import (
	"errors"
	"regexp"
	"strings"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/tidwall/gjson"
)

var codeFencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)```\\s*$")

// stripCodeFence unwraps a response the model put inside a markdown code block
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := codeFencePattern.FindStringSubmatch(raw); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return raw
}

func isBool(r gjson.Result) bool {
	return r.Type == gjson.True || r.Type == gjson.False
}

// text flattens a details/improvements value. Models occasionally answer with
// a list instead of a string.
func text(r gjson.Result) string {
	if !r.Exists() || r.Type == gjson.Null {
		return ""
	}
	if r.IsArray() {
		var parts []string
		for _, item := range r.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	}
	return strings.TrimSpace(r.String())
}

// Validate parses a model response into a per-chunk feature map. It rejects
// responses that are not JSON objects, that miss a required feature, or whose
// required features lack a boolean present flag. Top-level keys are matched
// case-insensitively; unreported catalog features come back absent.
func Validate(raw string) (features.Map, error) {
	body := stripCodeFence(raw)
	if !gjson.Valid(body) {
		return nil, &ChunkError{Kind: KindMalformedResponse, Raw: raw, Err: errors.New("response is not valid JSON")}
	}

	root := gjson.Parse(body)
	if !root.IsObject() {
		return nil, &ChunkError{Kind: KindMalformedResponse, Raw: raw, Err: errors.New("response is not a JSON object")}
	}

	normalized := make(map[features.Name]gjson.Result)
	root.ForEach(func(key, value gjson.Result) bool {
		normalized[features.Name(strings.ToLower(strings.TrimSpace(key.String())))] = value
		return true
	})

	var missing []string
	for _, name := range features.Required() {
		if _, ok := normalized[name]; !ok {
			missing = append(missing, string(name))
		}
	}
	if len(missing) > 0 {
		return nil, &ChunkError{Kind: KindIncompleteSchema, Missing: missing, Raw: raw}
	}

	for _, name := range features.Required() {
		if !isBool(normalized[name].Get("present")) {
			return nil, &ChunkError{Kind: KindInvalidFieldType, Field: string(name), Raw: raw}
		}
	}

	result := features.NewMap()
	for _, name := range features.Catalog() {
		entry, ok := normalized[name]
		if !ok {
			continue
		}
		present := entry.Get("present")
		result[name] = features.Verdict{
			Present:      isBool(present) && present.Bool(),
			Details:      text(entry.Get("details")),
			Improvements: text(entry.Get("improvements")),
		}
	}

	return result, nil
}
