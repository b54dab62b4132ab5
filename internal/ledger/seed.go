package ledger

import (
	"bufio"
	"os"
	"strings"

	"fintrack/internal/core"
)

// LoadCategories reads one category per line from path, skipping blanks and
// # comments. It falls back to core.DefaultCategories when the file is
// missing or empty.
func LoadCategories(path string) []string {
	if path != "" {
		if cats := readLines(path); len(cats) > 0 {
			return cats
		}
	}
	return append([]string(nil), core.DefaultCategories...)
}

// MergeCategories appends extra to base, dropping names already present
// under any casing. Order is preserved.
func MergeCategories(base []string, extra ...[]string) []string {
	all := append([]string(nil), base...)
	for _, e := range extra {
		all = append(all, e...)
	}
	return dedupe(all)
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := core.CategoryKey(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
