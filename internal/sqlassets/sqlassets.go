// Package sqlassets embeds the named SQL templates the ingestion,
// deduplication and statistics services execute. Templates are plain SQL
// files under sql/; they take no parameters, operating on the staging and
// core schemas directly.
package sqlassets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql
var files embed.FS

// Query returns the SQL text of a named template, e.g.
// "np_posel_transform.sql" or "stats/populate_statistike_cache.sql".
func Query(name string) (string, error) {
	data, err := files.ReadFile("sql/" + name)
	if err != nil {
		return "", fmt.Errorf("sql asset %s: %w", name, err)
	}
	q := strings.TrimSpace(string(data))
	if q == "" {
		return "", fmt.Errorf("sql asset %s is empty", name)
	}
	return q, nil
}

// MustQuery is Query for assets whose presence is guaranteed at build
// time; a missing asset is a packaging bug.
func MustQuery(name string) string {
	q, err := Query(name)
	if err != nil {
		panic(err)
	}
	return q
}

// Names lists all embedded templates, sorted. Used by tests to keep the
// asset set and the services that reference it in sync.
func Names() []string {
	var names []string
	fs.WalkDir(files, "sql", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".sql") {
			names = append(names, strings.TrimPrefix(path, "sql/"))
		}
		return nil
	})
	sort.Strings(names)
	return names
}
