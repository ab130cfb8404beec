package cases

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cerviguard/console/internal/analysis"
	"github.com/cerviguard/console/pkg/pagination"
	"github.com/cerviguard/console/pkg/repository"
)

const caseColumns = `
	c.id, c.owner_id, c.image_cid, c.filename, c.content_type, c.notes,
	c.status, c.error_code, c.error_message, c.result,
	c.created_at, c.updated_at`

// caseColumnsBare is the column list without the table alias, for use in
// INSERT ... RETURNING.
var caseColumnsBare = strings.ReplaceAll(caseColumns, "c.", "")

// scanCase maps a ledger row into a CaseRecord. The result column is JSONB
// and is nil until the case completes.
func scanCase(s repository.Scanner) (CaseRecord, error) {
	var (
		c         CaseRecord
		errCode   sql.NullString
		errMsg    sql.NullString
		resultRaw []byte
	)

	err := s.Scan(
		&c.ID, &c.OwnerID, &c.ImageCID, &c.Filename, &c.ContentType, &c.Notes,
		&c.Status, &errCode, &errMsg, &resultRaw,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return CaseRecord{}, err
	}

	if errCode.Valid {
		c.ErrorCode = &errCode.String
	}
	if errMsg.Valid {
		c.ErrorMessage = &errMsg.String
	}

	if len(resultRaw) > 0 {
		var result analysis.Result
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return CaseRecord{}, fmt.Errorf("decode case result: %w", err)
		}
		c.Result = &result
	}

	return c, nil
}

// scanCaseWithOwner additionally maps the joined account username. The join
// is a LEFT JOIN, so the username is null when the owner was removed.
func scanCaseWithOwner(s repository.Scanner) (CaseRecord, error) {
	var (
		c         CaseRecord
		errCode   sql.NullString
		errMsg    sql.NullString
		resultRaw []byte
		username  sql.NullString
	)

	err := s.Scan(
		&c.ID, &c.OwnerID, &c.ImageCID, &c.Filename, &c.ContentType, &c.Notes,
		&c.Status, &errCode, &errMsg, &resultRaw,
		&c.CreatedAt, &c.UpdatedAt,
		&username,
	)
	if err != nil {
		return CaseRecord{}, err
	}

	if errCode.Valid {
		c.ErrorCode = &errCode.String
	}
	if errMsg.Valid {
		c.ErrorMessage = &errMsg.String
	}
	if username.Valid {
		c.OwnerUsername = &username.String
	}

	if len(resultRaw) > 0 {
		var result analysis.Result
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return CaseRecord{}, fmt.Errorf("decode case result: %w", err)
		}
		c.Result = &result
	}

	return c, nil
}

// buildListClauses assembles the WHERE clause shared by the list and count
// queries. Arguments are appended after any already present in args, and
// base clauses (which must reference existing argument positions) come first.
func buildListClauses(args []any, base []string, page pagination.PageRequest, filter Filter) (string, []any) {
	clauses := base

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if page.Search != nil {
		args = append(args, "%"+escapeLike(*page.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(c.notes ILIKE $%d OR c.filename ILIKE $%d)", n, n))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally once wrapped in wildcards.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
