package authtest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type userRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UID          string `bun:"uid,pk"`
	Email        string `bun:"email,unique,notnull"`
	PasswordHash string `bun:"password_hash"`
	EmailLink    bool   `bun:"email_link"`
	Verified     bool   `bun:"verified"`
}

func (r *userRecord) principal() account {
	return account{uid: r.UID, email: r.Email}
}

// userStore keeps backend accounts in an in-memory SQLite table. Each store
// gets its own named memory database so parallel backends stay isolated.
type userStore struct {
	db *bun.DB
}

func newUserStore(ctx context.Context) (*userStore, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*userRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &userStore{db: db}, nil
}

func (s *userStore) close() error {
	return s.db.Close()
}

func (s *userStore) insert(ctx context.Context, rec *userRecord) error {
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	return err
}

func (s *userStore) byEmail(ctx context.Context, email string) (*userRecord, error) {
	rec := new(userRecord)
	err := s.db.NewSelect().Model(rec).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *userStore) updatePassword(ctx context.Context, email, hash string) error {
	_, err := s.db.NewUpdate().
		Model((*userRecord)(nil)).
		Set("password_hash = ?", hash).
		Where("email = ?", email).
		Exec(ctx)
	return err
}

func (s *userStore) setEmailLink(ctx context.Context, email string) error {
	_, err := s.db.NewUpdate().
		Model((*userRecord)(nil)).
		Set("email_link = ?", true).
		Where("email = ?", email).
		Exec(ctx)
	return err
}

func (s *userStore) markVerified(ctx context.Context, email string) error {
	_, err := s.db.NewUpdate().
		Model((*userRecord)(nil)).
		Set("verified = ?", true).
		Where("email = ?", email).
		Exec(ctx)
	return err
}
