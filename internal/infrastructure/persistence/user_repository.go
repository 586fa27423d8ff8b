package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/query"
	"github.com/appcanvas/builder/pkg/utils"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts an account. Anonymous users have no email or password.
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	now := utils.NowMillis()
	if !u.CreatedAt.IsZero() {
		now = u.CreatedAt.UnixMilli()
	}
	q := query.Insert(constants.TableUser, map[string]interface{}{
		constants.FieldID:               u.ID,
		constants.FieldName:             u.Name,
		constants.FieldEmail:            nullable(u.Email),
		constants.FieldPasswordHash:     nullable(u.PasswordHash),
		constants.FieldIsAnonymous:      u.IsAnonymous,
		constants.FieldCreatedDate:      now,
		constants.FieldLastModifiedDate: now,
	}).Build()

	_, err := r.db.ExecContext(ctx, q.SQL, q.Params...)
	return err
}

func (r *UserRepository) CheckUserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	q := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", constants.TableUser, constants.FieldEmail)
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetUserByEmail returns nil when no account has the address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, constants.FieldEmail, email)
}

// GetUserByID returns nil when the id is unknown
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, constants.FieldID, id)
}

func (r *UserRepository) getOne(ctx context.Context, column, value string) (*models.User, error) {
	q := query.From(constants.TableUser).
		Select([]string{"*"}).
		Where("`"+column+"` = ?", value).
		Limit(1).
		Build()

	rows, err := r.db.QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	row := results[0]
	return &models.User{
		ID:           row.String(constants.FieldID),
		Name:         row.String(constants.FieldName),
		Email:        row.String(constants.FieldEmail),
		PasswordHash: row.String(constants.FieldPasswordHash),
		IsAnonymous:  row.Bool(constants.FieldIsAnonymous),
		CreatedAt:    utils.FromMillis(row.Int64(constants.FieldCreatedDate)),
	}, nil
}

// DeleteUser deletes a user record
func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", constants.TableUser, constants.FieldID)
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
