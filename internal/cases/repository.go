package cases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/analysis"
	"github.com/cerviguard/console/pkg/pagination"
	"github.com/cerviguard/console/pkg/repository"
	"github.com/cerviguard/console/pkg/storage"
)

// Options carries the request-handling limits the case system enforces.
type Options struct {
	MaxUploadSize int64
	Pagination    pagination.Config
}

type repo struct {
	db        *sql.DB
	store     storage.System
	analyzers *analysis.Factory
	opts      Options
	logger    *slog.Logger
}

// New creates the case lifecycle system backed by the ledger database,
// the blob store, and the classification service factory.
func New(db *sql.DB, store storage.System, analyzers *analysis.Factory, opts Options, logger *slog.Logger) System {
	return &repo{
		db:        db,
		store:     store,
		analyzers: analyzers,
		opts:      opts,
		logger:    logger.With("system", "cases"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.opts, r.logger)
}

// Create runs the intake pipeline. The image is stored first so the ledger
// never references a blob that was not written; if the insert fails, the
// blob is removed again unless another case already shares its content id.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*CaseRecord, error) {
	if len(cmd.Image) == 0 {
		return nil, ErrEmptyImage
	}
	if len(cmd.Notes) > MaxNotesLength {
		return nil, ErrNotesTooLong
	}

	ownerID, err := uuid.Parse(cmd.Owner.ID)
	if err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}

	stored, err := r.store.Store(ctx, cmd.Image, cmd.Filename, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store case image: %w", err)
	}

	record, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (CaseRecord, error) {
		q := `
			INSERT INTO cases (id, owner_id, image_cid, filename, content_type, notes, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + caseColumnsBare

		return repository.QueryOne(ctx, tx, q, []any{
			uuid.New(), ownerID, stored.CID, cmd.Filename, cmd.ContentType, cmd.Notes, StatusProcessing,
		}, scanCase)
	})
	if err != nil {
		r.compensateStore(ctx, stored.CID)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("case opened",
		"case_id", record.ID,
		"owner", cmd.Owner.Username,
		"cid", stored.CID)

	return r.classify(ctx, record, cmd.Image)
}

// classify submits the image and records the terminal state. On failure the
// record is moved to the error state and returned alongside the error.
func (r *repo) classify(ctx context.Context, record CaseRecord, image []byte) (*CaseRecord, error) {
	analyzer, err := r.analyzers.Handle()
	if err != nil {
		return r.markFailed(ctx, record, err)
	}

	result, err := analyzer.Classify(ctx, image)
	if err != nil {
		return r.markFailed(ctx, record, err)
	}

	updated, err := r.markCompleted(ctx, record.ID, result)
	if err != nil {
		return nil, err
	}

	r.logger.Info("case completed",
		"case_id", record.ID,
		"structured", result.Structured())

	return updated, nil
}

// markCompleted transitions a processing case to completed. The status guard
// in the WHERE clause makes terminal states immutable: if the row already
// left processing, the stored record wins and is returned unchanged.
func (r *repo) markCompleted(ctx context.Context, id uuid.UUID, result *analysis.Result) (*CaseRecord, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode case result: %w", err)
	}

	q := `
		UPDATE cases
		SET status = $2, result = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`

	err = repository.ExecExpectOne(ctx, r.db, q, id, StatusCompleted, payload, StatusProcessing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("case already terminal, completion discarded", "case_id", id)
	}

	return r.Find(ctx, id)
}

// markFailed records a classification failure on the case and returns both
// the updated record and the original error.
func (r *repo) markFailed(ctx context.Context, record CaseRecord, cause error) (*CaseRecord, error) {
	code := FailureCode(cause)

	q := `
		UPDATE cases
		SET status = $2, error_code = $3, error_message = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`

	execErr := repository.ExecExpectOne(ctx, r.db, q,
		record.ID, StatusError, code, cause.Error(), StatusProcessing)
	if execErr != nil && !errors.Is(execErr, sql.ErrNoRows) {
		r.logger.Error("failed to record case error state",
			"case_id", record.ID,
			"error", execErr)
		return nil, cause
	}

	r.logger.Warn("case failed",
		"case_id", record.ID,
		"code", code,
		"error", cause)

	updated, findErr := r.Find(ctx, record.ID)
	if findErr != nil {
		return nil, cause
	}
	return updated, cause
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*CaseRecord, error) {
	q := "SELECT" + caseColumns + " FROM cases c WHERE c.id = $1"

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanCase)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

// List returns the cases owned by a single account, newest first.
func (r *repo) List(ctx context.Context, ownerID uuid.UUID, page pagination.PageRequest, filter Filter) (pagination.PageResult[CaseRecord], error) {
	page.Normalize(r.opts.Pagination)

	where, args := buildListClauses([]any{ownerID}, []string{"c.owner_id = $1"}, page, filter)

	total, err := r.count(ctx, "FROM cases c"+where, args)
	if err != nil {
		return pagination.PageResult[CaseRecord]{}, err
	}

	q := fmt.Sprintf(
		"SELECT%s FROM cases c%s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d",
		caseColumns, where, len(args)+1, len(args)+2)

	data, err := repository.QueryMany(ctx, r.db, q, append(args, page.PageSize, page.Offset()), scanCase)
	if err != nil {
		return pagination.PageResult[CaseRecord]{}, err
	}

	return pagination.NewPageResult(data, total, page.Page, page.PageSize), nil
}

// ListAll returns cases across all accounts with owner usernames attached.
// The account join is a LEFT JOIN so cases survive owner removal.
func (r *repo) ListAll(ctx context.Context, page pagination.PageRequest, filter Filter) (pagination.PageResult[CaseRecord], error) {
	page.Normalize(r.opts.Pagination)

	where, args := buildListClauses(nil, nil, page, filter)

	total, err := r.count(ctx, "FROM cases c"+where, args)
	if err != nil {
		return pagination.PageResult[CaseRecord]{}, err
	}

	q := fmt.Sprintf(
		"SELECT%s, u.username FROM cases c LEFT JOIN users u ON u.id = c.owner_id%s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d",
		caseColumns, where, len(args)+1, len(args)+2)

	data, err := repository.QueryMany(ctx, r.db, q, append(args, page.PageSize, page.Offset()), scanCaseWithOwner)
	if err != nil {
		return pagination.PageResult[CaseRecord]{}, err
	}

	return pagination.NewPageResult(data, total, page.Page, page.PageSize), nil
}

// Delete removes a case from the ledger and, when no other case references
// the same image, the stored blob. Blob removal is best effort.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	q := "DELETE FROM cases WHERE id = $1"
	if err := repository.ExecExpectOne(ctx, r.db, q, id); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.compensateStore(ctx, record.ImageCID)

	r.logger.Info("case deleted", "case_id", id, "cid", record.ImageCID)
	return nil
}

// count runs a COUNT(*) over the given FROM/WHERE fragment.
func (r *repo) count(ctx context.Context, fromWhere string, args []any) (int, error) {
	return repository.QueryOne(ctx, r.db, "SELECT COUNT(*) "+fromWhere, args,
		func(s repository.Scanner) (int, error) {
			var n int
			err := s.Scan(&n)
			return n, err
		})
}

// compensateStore removes a blob no case references. Content addressing
// means multiple cases can share one blob, so the reference count is
// checked first. Failures are logged and swallowed; a stray blob is
// recoverable, a missing one is not.
func (r *repo) compensateStore(ctx context.Context, cid string) {
	referenced, err := r.count(ctx, "FROM cases c WHERE c.image_cid = $1", []any{cid})
	if err != nil {
		r.logger.Warn("blob reference check failed", "cid", cid, "error", err)
		return
	}
	if referenced > 0 {
		return
	}

	if err := r.store.Delete(ctx, cid); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("blob cleanup failed", "cid", cid, "error", err)
	}
}
