package sync

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// EnvUpdate describes the variables to write into the "env" block of a
// Claude settings document. Names in Unset are removed.
type EnvUpdate struct {
	Set   map[string]string
	Unset []string
}

// touched returns every variable name the update affects
func (u EnvUpdate) touched() map[string]bool {
	names := make(map[string]bool, len(u.Set)+len(u.Unset))
	for name := range u.Set {
		names[name] = true
	}
	for _, name := range u.Unset {
		names[name] = true
	}
	return names
}

// UpdateEnvField rewrites only the requested keys inside the "env" object of
// a Claude settings document. Every other byte of the document is preserved.
// An empty document is treated as "{}".
func UpdateEnvField(originalContent string, update EnvUpdate) (string, error) {
	if strings.TrimSpace(originalContent) == "" {
		originalContent = "{}"
	}

	result := gjson.Parse(originalContent)
	if !result.IsObject() {
		return "", fmt.Errorf("invalid JSON content")
	}
	if env := result.Get("env"); env.Exists() && !env.IsObject() {
		return "", fmt.Errorf("env field is not an object")
	}

	updated := originalContent
	var err error

	names := make([]string, 0, len(update.Set))
	for name := range update.Set {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		updated, err = sjson.Set(updated, envPath(name), update.Set[name])
		if err != nil {
			return "", fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	for _, name := range update.Unset {
		if _, ok := update.Set[name]; ok {
			continue
		}
		updated, err = sjson.Delete(updated, envPath(name))
		if err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	if err := validateJSONUpdate(originalContent, updated, update.touched()); err != nil {
		return "", fmt.Errorf("update validation failed: %w", err)
	}

	return updated, nil
}

// ReadEnvField returns the value of one variable from the "env" block
func ReadEnvField(content, name string) (string, bool) {
	value := gjson.Get(content, envPath(name))
	if !value.Exists() {
		return "", false
	}
	return value.String(), true
}

func envPath(name string) string {
	return "env." + escapePathComponent(name)
}

// escapePathComponent escapes gjson/sjson path metacharacters
func escapePathComponent(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// validateJSONUpdate checks that only the touched env keys differ between
// the two documents
func validateJSONUpdate(originalContent, updatedContent string, touched map[string]bool) error {
	if !json.Valid([]byte(originalContent)) {
		return fmt.Errorf("original JSON is invalid")
	}
	if !json.Valid([]byte(updatedContent)) {
		return fmt.Errorf("updated JSON is invalid")
	}

	original, updated, err := parseToMaps(originalContent, updatedContent)
	if err != nil {
		return err
	}

	differences := deepCompare(original, updated)
	if len(differences) > 0 {
		return fmt.Errorf("unexpected changes to non-env fields: %s", strings.Join(differences, ", "))
	}

	originalEnv, err := extractEnv(original)
	if err != nil {
		return err
	}
	updatedEnv, err := extractEnv(updated)
	if err != nil {
		return err
	}

	for key, originalVal := range originalEnv {
		if touched[key] {
			continue
		}
		updatedVal, exists := updatedEnv[key]
		if !exists {
			return fmt.Errorf("env field '%s' was deleted", key)
		}
		if fmt.Sprintf("%v", originalVal) != fmt.Sprintf("%v", updatedVal) {
			return fmt.Errorf("env field '%s' was modified", key)
		}
	}
	for key := range updatedEnv {
		if _, existed := originalEnv[key]; !existed && !touched[key] {
			return fmt.Errorf("env field '%s' was added", key)
		}
	}

	return nil
}

func parseToMaps(originalStr, updatedStr string) (map[string]interface{}, map[string]interface{}, error) {
	var original map[string]interface{}
	if err := json.Unmarshal([]byte(originalStr), &original); err != nil {
		return nil, nil, fmt.Errorf("failed to parse original JSON: %w", err)
	}

	var updated map[string]interface{}
	if err := json.Unmarshal([]byte(updatedStr), &updated); err != nil {
		return nil, nil, fmt.Errorf("failed to parse updated JSON: %w", err)
	}

	return original, updated, nil
}

// deepCompare lists top-level differences outside the env field
func deepCompare(original, updated map[string]interface{}) []string {
	var differences []string

	for key, originalVal := range original {
		if key == "env" {
			continue
		}

		updatedVal, exists := updated[key]
		if !exists {
			differences = append(differences, key+" (missing)")
			continue
		}

		originalMap, originalIsMap := originalVal.(map[string]interface{})
		updatedMap, updatedIsMap := updatedVal.(map[string]interface{})
		if originalIsMap && updatedIsMap {
			for _, diff := range deepCompareNested(originalMap, updatedMap) {
				differences = append(differences, key+"."+diff)
			}
		} else if fmt.Sprintf("%v", originalVal) != fmt.Sprintf("%v", updatedVal) {
			differences = append(differences, key)
		}
	}

	for key := range updated {
		if key == "env" {
			continue
		}
		if _, exists := original[key]; !exists {
			differences = append(differences, key+" (new)")
		}
	}

	sort.Strings(differences)
	return differences
}

// deepCompareNested compares nested objects, where "env" has no special meaning
func deepCompareNested(original, updated map[string]interface{}) []string {
	var differences []string
	for key, originalVal := range original {
		updatedVal, exists := updated[key]
		if !exists {
			differences = append(differences, key+" (missing)")
			continue
		}
		originalMap, originalIsMap := originalVal.(map[string]interface{})
		updatedMap, updatedIsMap := updatedVal.(map[string]interface{})
		if originalIsMap && updatedIsMap {
			for _, diff := range deepCompareNested(originalMap, updatedMap) {
				differences = append(differences, key+"."+diff)
			}
		} else if fmt.Sprintf("%v", originalVal) != fmt.Sprintf("%v", updatedVal) {
			differences = append(differences, key)
		}
	}
	for key := range updated {
		if _, exists := original[key]; !exists {
			differences = append(differences, key+" (new)")
		}
	}
	return differences
}

func extractEnv(data map[string]interface{}) (map[string]interface{}, error) {
	env, exists := data["env"]
	if !exists {
		return map[string]interface{}{}, nil
	}

	envMap, ok := env.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("env field is not a map")
	}

	return envMap, nil
}
