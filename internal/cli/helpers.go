package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// parseVariantSpec parses a --variant flag of the form "Name=split",
// e.g. "Control=50".
func parseVariantSpec(spec string) (name string, split float64, err error) {
	idx := strings.LastIndex(spec, "=")
	if idx <= 0 || idx == len(spec)-1 {
		return "", 0, fmt.Errorf("invalid variant %q, expected Name=split", spec)
	}
	name = spec[:idx]
	split, err = strconv.ParseFloat(spec[idx+1:], 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid traffic split in %q: %w", spec, err)
	}
	return name, split, nil
}

// parseConfigSpec parses a --config flag of the form "Variant:key=value",
// e.g. "Treatment:new_checkout=true". Values parse as bool, then number,
// then fall back to string.
func parseConfigSpec(spec string) (variant, key string, value any, err error) {
	colon := strings.Index(spec, ":")
	if colon <= 0 {
		return "", "", nil, fmt.Errorf("invalid config %q, expected Variant:key=value", spec)
	}
	variant = spec[:colon]

	rest := spec[colon+1:]
	eq := strings.Index(rest, "=")
	if eq <= 0 || eq == len(rest)-1 {
		return "", "", nil, fmt.Errorf("invalid config %q, expected Variant:key=value", spec)
	}
	key = rest[:eq]
	value = parseConfigValue(rest[eq+1:])
	return variant, key, value, nil
}

func parseConfigValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func repeatChar(c rune, n int) string {
	return strings.Repeat(string(c), n)
}
