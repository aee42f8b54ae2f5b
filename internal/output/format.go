// Package output renders retrieved secret data for terminals, files and
// pipes. Every format masks values by default; callers opt into revealing.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	kverrors "github.com/systmms/vaultkv/internal/errors"
)

// Format identifies a rendering of secret data.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatEnv   Format = "env"
	FormatRaw   Format = "raw"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatYAML, FormatEnv, FormatRaw:
		return Format(s), nil
	}
	return "", kverrors.UserError{
		Message:    fmt.Sprintf("Unknown output format '%s'", s),
		Suggestion: "Valid formats: table, json, yaml, env, raw",
	}
}

// Render produces the payload for the chosen format. The key argument is
// only consulted by the raw format, which always reveals: it exists for
// piping single values into other tools.
func Render(format Format, data map[string]string, reveal bool, key string) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(data, reveal)
	case FormatYAML:
		return renderYAML(data, reveal)
	case FormatEnv:
		return renderEnv(data, reveal), nil
	case FormatRaw:
		return renderRaw(data, key)
	default:
		return renderTable(data, reveal), nil
	}
}

func renderTable(data map[string]string, reveal bool) string {
	if len(data) == 0 {
		return "*No data*"
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoWrapText(false)

	for _, k := range sortedKeys(data) {
		table.Append([]string{k, Mask(data[k], reveal)})
	}
	table.Render()

	return strings.TrimRight(buf.String(), "\n")
}

func renderJSON(data map[string]string, reveal bool) (string, error) {
	out := data
	if !reveal {
		out = maskAll(data)
	}

	// json.Marshal sorts map keys, so output is deterministic
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding secret data as JSON: %w", err)
	}
	return string(encoded), nil
}

func renderYAML(data map[string]string, reveal bool) (string, error) {
	out := data
	if !reveal {
		out = maskAll(data)
	}

	encoded, err := yaml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding secret data as YAML: %w", err)
	}
	return strings.TrimRight(string(encoded), "\n"), nil
}

func renderEnv(data map[string]string, reveal bool) string {
	lines := make([]string, 0, len(data))
	for _, k := range sortedKeys(data) {
		lines = append(lines, fmt.Sprintf("export %s=%q", EnvName(k), Mask(data[k], reveal)))
	}
	return strings.Join(lines, "\n")
}

func renderRaw(data map[string]string, key string) (string, error) {
	if len(data) == 1 {
		for _, v := range data {
			return v, nil
		}
	}
	if v, ok := data[key]; ok && key != "" {
		return v, nil
	}
	return "", kverrors.UserError{
		Message:    "The raw format requires a single value",
		Suggestion: "Select one key with --key",
	}
}

// EnvName converts a secret key into an environment variable name: upper
// case with '-' and '.' mapped to '_'. Shared by the env format and the
// exec command so both agree on names.
func EnvName(key string) string {
	name := strings.ToUpper(key)
	name = strings.ReplaceAll(name, "-", "_")
	return strings.ReplaceAll(name, ".", "_")
}

func maskAll(data map[string]string) map[string]string {
	masked := make(map[string]string, len(data))
	for k, v := range data {
		masked[k] = Mask(v, false)
	}
	return masked
}

func sortedKeys(data map[string]string) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
