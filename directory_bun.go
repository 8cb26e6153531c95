package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunDirectory is the SQL-backed Directory. Records are keyed by the
// provider identifier; the primary key is derived from it so repeated
// writes for the same identifier land on the same row.
type BunDirectory struct {
	repo repository.Repository[*UserRecord]
	db   *bun.DB
}

var _ Directory = (*BunDirectory)(nil)

func NewBunDirectory(db *bun.DB) *BunDirectory {
	repo := repository.NewRepository[*UserRecord](db, repository.ModelHandlers[*UserRecord]{
		NewRecord: func() *UserRecord { return &UserRecord{} },
		GetID: func(u *UserRecord) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *UserRecord, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &BunDirectory{
		repo: repo,
		db:   db,
	}
}

func (d *BunDirectory) Get(ctx context.Context, uid string) (*UserRecord, error) {
	record := &UserRecord{}

	err := d.db.NewSelect().
		Model(record).
		Where("?TableAlias.uid = ?", uid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, recordNotFound(uid)
		}
		return nil, err
	}

	return record, nil
}

func (d *BunDirectory) Put(ctx context.Context, record *UserRecord) (*UserRecord, error) {
	prepareRecordDefaults(record)

	existing, err := d.Get(ctx, record.UID)
	if err == nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return d.repo.UpdateTx(ctx, d.db, record, repository.UpdateByID(record.ID.String()))
	}

	if !goerrors.IsNotFound(err) {
		return nil, err
	}

	return d.repo.CreateTx(ctx, d.db, record)
}

func (d *BunDirectory) Patch(ctx context.Context, uid string, patch DirectoryPatch) error {
	if patch.IsZero() {
		return nil
	}

	q := d.db.NewUpdate().
		Model((*UserRecord)(nil)).
		Where("?TableAlias.uid = ?", uid)

	if patch.EmailVerified != nil {
		q.Set("is_email_verified = ?", *patch.EmailVerified)
	}
	if patch.LastLoginAt != nil {
		q.Set("last_login_at = ?", *patch.LastLoginAt)
	}
	if patch.DisplayName != nil {
		q.Set("display_name = ?", *patch.DisplayName)
	}
	if patch.PhotoURL != nil {
		q.Set("photo_url = ?", *patch.PhotoURL)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recordNotFound(uid)
	}

	return nil
}

// recordNotFound normalizes a missing row into the NotFound error the
// Directory contract promises, whatever shape the driver reported.
func recordNotFound(uid string) error {
	return goerrors.New("user record not found", goerrors.CategoryNotFound).
		WithTextCode(CodeUserNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{
			"uid": uid,
		})
}

func prepareRecordDefaults(record *UserRecord) {
	if record == nil {
		return
	}

	record.EnsureDefaults()

	if record.ID == uuid.Nil {
		// deterministic key from the provider identifier, same identifier
		// always maps to the same row
		if id, err := hashid.NewUUID(record.UID); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
}
