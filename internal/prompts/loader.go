// Package prompts holds the coaching, extraction and analysis prompts as
// embedded JSON files of key to template text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// parsed maps a file name such as "coaching.json" to its decoded prompts.
var (
	parsedMu sync.RWMutex
	parsed   = map[string]map[string]string{}
)

// Get returns the prompt stored under key in file, e.g.
// Get("coaching.json", "star-system").
func Get(file, key string) (string, error) {
	set, err := promptSet(file)
	if err != nil {
		return "", err
	}
	text, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return text, nil
}

// MustGet is Get for prompts the coach cannot run without.
func MustGet(file, key string) string {
	text, err := Get(file, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return text
}

// MustRender loads a prompt and fills its placeholders.
func MustRender(file, key string, data map[string]string) string {
	return Format(MustGet(file, key), data)
}

// Format substitutes {{.Name}} placeholders with data["Name"] in a single
// pass. Placeholders without a value are left as they are.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for name, value := range data {
		pairs = append(pairs, "{{."+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func promptSet(file string) (map[string]string, error) {
	parsedMu.RLock()
	set, ok := parsed[file]
	parsedMu.RUnlock()
	if ok {
		return set, nil
	}

	raw, err := promptFiles.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}

	parsedMu.Lock()
	parsed[file] = set
	parsedMu.Unlock()
	return set, nil
}

// ClearCache drops every decoded file so the next Get reads the embedded
// copy again.
func ClearCache() {
	parsedMu.Lock()
	parsed = map[string]map[string]string{}
	parsedMu.Unlock()
}
