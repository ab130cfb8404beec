package cases

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cerviguard/console/pkg/pagination"
)

// stubScanner plays back a fixed row.
type stubScanner struct {
	values []any
}

func (s *stubScanner) Scan(dest ...any) error {
	if len(dest) != len(s.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(s.values))
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *uuid.UUID:
			*v = s.values[i].(uuid.UUID)
		case *string:
			*v = s.values[i].(string)
		case *Status:
			*v = s.values[i].(Status)
		case *sql.NullString:
			*v = s.values[i].(sql.NullString)
		case *[]byte:
			*v = s.values[i].([]byte)
		case *time.Time:
			*v = s.values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func ledgerRow(username sql.NullString) *stubScanner {
	now := time.Now()
	return &stubScanner{values: []any{
		uuid.New(), uuid.New(), "a1b2c3d4e5f60718", "frame.jpg", "image/jpeg", "",
		StatusCompleted, sql.NullString{}, sql.NullString{}, []byte(nil),
		now, now,
		username,
	}}
}

func TestScanCaseWithOwner(t *testing.T) {
	tests := []struct {
		name     string
		username sql.NullString
		want     *string
	}{
		{"joined owner", sql.NullString{String: "dr.okafor", Valid: true}, strptr("dr.okafor")},
		{"removed owner", sql.NullString{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := scanCaseWithOwner(ledgerRow(tt.username))
			if err != nil {
				t.Fatalf("scanCaseWithOwner() error = %v", err)
			}

			switch {
			case tt.want == nil && record.OwnerUsername != nil:
				t.Errorf("OwnerUsername = %q, want nil", *record.OwnerUsername)
			case tt.want != nil && (record.OwnerUsername == nil || *record.OwnerUsername != *tt.want):
				t.Errorf("OwnerUsername = %v, want %q", record.OwnerUsername, *tt.want)
			}
		})
	}
}

func strptr(s string) *string { return &s }

func TestBuildListClausesEscapesSearchTerm(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"quadrant", "%quadrant%"},
		{"100%", `%100\%%`},
		{"frame_2", `%frame\_2%`},
		{`c:\scans`, `%c:\\scans%`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			page := pagination.PageRequest{Search: &tt.term}
			where, args := buildListClauses(nil, nil, page, Filter{})

			if !strings.Contains(where, "ILIKE $1") {
				t.Fatalf("clause = %q, want ILIKE against $1", where)
			}
			if len(args) != 1 || args[0] != tt.want {
				t.Errorf("args = %v, want [%q]", args, tt.want)
			}
		})
	}
}

func TestBuildListClausesCombinesBaseAndFilter(t *testing.T) {
	status := StatusError
	where, args := buildListClauses(
		[]any{uuid.New()},
		[]string{"c.owner_id = $1"},
		pagination.PageRequest{},
		Filter{Status: &status},
	)

	if where != " WHERE c.owner_id = $1 AND c.status = $2" {
		t.Errorf("clause = %q", where)
	}
	if len(args) != 2 || args[1] != status {
		t.Errorf("args = %v, want owner id then status", args)
	}
}
