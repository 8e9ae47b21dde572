package sqlsource

import (
	"embed"
	"fmt"
)

// The extract views live on the reporting replica; each query selects the
// columns the row structs scan by name, with dates cast to text because the
// upstream schema mixes date, timestamp, and varchar columns across tables.

//go:embed queries/*.sql
var queriesFS embed.FS

// query returns the embedded SELECT for one extract table.
func query(table string) (string, error) {
	b, err := queriesFS.ReadFile("queries/" + table + ".sql")
	if err != nil {
		return "", fmt.Errorf("no query for table %q: %w", table, err)
	}
	return string(b), nil
}
