package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Universe supplies the symbols the signal pass walks.
type Universe interface {
	Symbols() ([]string, error)
}

// DirUniverse takes symbols from the CSV file names in Dir, so a directory
// holding AAPL.csv and MSFT.csv yields AAPL and MSFT.
type DirUniverse struct {
	Dir string
}

func (u DirUniverse) Symbols() ([]string, error) {
	entries, err := os.ReadDir(u.Dir)
	if err != nil {
		return nil, fmt.Errorf("read symbol dir: %w", err)
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		sym, _, _ := strings.Cut(e.Name(), ".")
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

// StaticUniverse is a fixed symbol list, typically from config.
type StaticUniverse []string

func (u StaticUniverse) Symbols() ([]string, error) {
	out := make([]string, 0, len(u))
	for _, s := range u {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
