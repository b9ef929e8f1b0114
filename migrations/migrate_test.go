//go:build !integration

package migrations

import (
	"sort"
	"strings"
	"testing"
)

func TestNames(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("migrations must apply in filename order, got %v", names)
	}
	for _, n := range names {
		if !strings.HasSuffix(n, ".sql") {
			t.Errorf("unexpected non-sql migration %q", n)
		}
	}
	if names[0] != "0001_init.sql" {
		t.Errorf("first migration = %q, want 0001_init.sql", names[0])
	}
}
