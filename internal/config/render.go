package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	top, sections, order := splitSections(GetConfigOptions())

	lines := []string{"# sheetsite configuration (TOML)"}
	for _, o := range top {
		lines = appendOption(lines, o)
	}
	for _, section := range order {
		lines = append(lines, "["+section+"]")
		for _, o := range sections[section] {
			lines = appendOption(lines, o)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// UpdateTOML adds missing defaults to an existing TOML document and
// comments out keys that are no longer part of the option table. Keys of a
// section already present are inserted at the end of that section.
func UpdateTOML(existing string) (string, bool) {
	opts := GetConfigOptions()
	known := make(map[string]bool, len(opts))
	for _, o := range opts {
		known[o.Key] = true
	}

	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool)
	// sectionEnd is the index in out after the last key of each section;
	// "" is the top level, which ends at the first header.
	sectionEnd := map[string]int{}
	topEnd := -1
	section := ""
	changed := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]") {
			if topEnd < 0 {
				topEnd = len(out)
			}
			section = strings.TrimSpace(trim[1 : len(trim)-1])
			out = append(out, line)
			sectionEnd[section] = len(out)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		full := key
		if section != "" {
			full = section + "." + key
		}
		seen[full] = true
		if !known[full] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out,
				indent+"# OUTDATED: option removed from config schema",
				indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
		} else {
			out = append(out, line)
		}
		if section != "" {
			sectionEnd[section] = len(out)
		}
	}
	if topEnd < 0 {
		topEnd = len(out)
	}

	var missing []ConfigOption
	for _, o := range opts {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	const marker = "# Added by config update"
	top, sections, order := splitSections(missing)
	inserts := make(map[int][]string)
	if len(top) > 0 {
		block := []string{marker}
		for _, o := range top {
			block = appendOption(block, o)
		}
		inserts[topEnd] = append(inserts[topEnd], block...)
	}
	var fresh []string
	for _, s := range order {
		at, exists := sectionEnd[s]
		if !exists {
			fresh = append(fresh, "["+s+"]")
			for _, o := range sections[s] {
				fresh = appendOption(fresh, o)
			}
			continue
		}
		block := []string{marker}
		for _, o := range sections[s] {
			block = appendOption(block, o)
		}
		inserts[at] = append(inserts[at], block...)
	}

	merged := make([]string, 0, len(out)+len(missing)*3)
	for i := 0; i <= len(out); i++ {
		merged = append(merged, inserts[i]...)
		if i < len(out) {
			merged = append(merged, out[i])
		}
	}
	if len(fresh) > 0 {
		merged = append(merged, "", marker)
		merged = append(merged, fresh...)
	}
	return strings.Join(merged, "\n"), true
}

// splitSections groups dotted keys by their first segment, keeping order.
func splitSections(opts []ConfigOption) (top []ConfigOption, sections map[string][]ConfigOption, order []string) {
	sections = make(map[string][]ConfigOption)
	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			top = append(top, o)
			continue
		}
		if _, exists := sections[section]; !exists {
			order = append(order, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return top, sections, order
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func appendOption(lines []string, o ConfigOption) []string {
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
