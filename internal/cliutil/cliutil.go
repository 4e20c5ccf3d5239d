// Package cliutil holds small helpers for command-line argument handling.
package cliutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

// ExpandPositionals expands globs among path arguments. Matches of one
// pattern are sorted; the order of the arguments themselves is kept. A
// pattern that matches nothing is an error. "-" passes through.
func ExpandPositionals(posArgs []string) ([]string, error) {
	var out []string
	for _, a := range posArgs {
		if a == "-" || !hasGlobMeta(a) {
			out = append(out, a)
			continue
		}
		m, err := filepath.Glob(a)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %v", a, err)
		}
		if len(m) == 0 {
			return nil, fmt.Errorf("no input matched %q", a)
		}
		sort.Strings(m)
		out = append(out, m...)
	}
	return out, nil
}

// ParseTiles accepts "3", "0,2,5" and ranges like "4-7".
func ParseTiles(specs []string) ([]int, error) {
	var out []int
	for _, s := range specs {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lo, hi, isRange := strings.Cut(part, "-")
			a, err := strconv.Atoi(lo)
			if err != nil || a < 0 {
				return nil, fmt.Errorf("bad tile %q", part)
			}
			b := a
			if isRange {
				if b, err = strconv.Atoi(hi); err != nil || b < a {
					return nil, fmt.Errorf("bad tile range %q", part)
				}
			}
			for i := a; i <= b; i++ {
				out = append(out, i)
			}
		}
	}
	return out, nil
}
