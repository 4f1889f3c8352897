package evaluator

import (
	"testing"

	"tally/internal/object"
)

func TestSplitConnectionSpec(t *testing.T) {
	tests := []struct {
		spec, driver, dsn string
	}{
		{"mysql:user:pw@/db", "mysql", "user:pw@/db"},
		{"postgres://user@host/db", "postgres", "postgres://user@host/db"},
		{"./data.db", "sqlite3", "./data.db"},
		{":memory:", "sqlite3", ":memory:"},
	}
	for _, tt := range tests {
		driver, dsn := splitConnectionSpec(tt.spec)
		if driver != tt.driver || dsn != tt.dsn {
			t.Errorf("splitConnectionSpec(%q) = %q, %q; want %q, %q",
				tt.spec, driver, dsn, tt.driver, tt.dsn)
		}
	}
}

func TestDbHandleErrors(t *testing.T) {
	wantErrKind(t, `Db:query 99 "select 1"`, object.NotInDomain)
	wantErrKind(t, `Db:open 1`, object.UnexpectedType)
	wantErrKind(t, `Db:query "nope" "select 1"`, object.UnexpectedType)
	wantInspect(t, "Db:close 99", "false")
}
