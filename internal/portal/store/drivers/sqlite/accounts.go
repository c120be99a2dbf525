package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, handle, email, password_hash, role, temp_password,
	otp_code, otp_created_at, otp_verified, last_password_change, created_at, updated_at`

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetByHandle(ctx context.Context, handle string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE handle = ?`, handle)
	return scanAccount(row)
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, handle, email, password_hash, role, temp_password,
			otp_verified, last_password_change, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		a.ID, a.Handle, a.Email, a.PasswordHash, a.Role, a.TempPassword, now, now, now)
	return mapConstraint(err)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID, newHash string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = ?, temp_password = 0, last_password_change = ?, updated_at = ?
		WHERE id = ?`,
		newHash, now, now, accountID)
	return err
}

func (r *accountsRepo) SetOTP(ctx context.Context, accountID, code string, createdAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET otp_code = ?, otp_created_at = ?, otp_verified = 0, updated_at = ?
		WHERE id = ?`,
		code, createdAt.UTC(), time.Now().UTC(), accountID)
	return err
}

func (r *accountsRepo) ConsumeOTP(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET otp_code = NULL, otp_verified = 1, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), accountID)
	return err
}

func (r *accountsRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE role = ?`, role).Scan(&count)
	return count, err
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account
	var otpCode sql.NullString
	var otpCreatedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.Handle, &a.Email, &a.PasswordHash, &a.Role, &a.TempPassword,
		&otpCode, &otpCreatedAt, &a.OTPVerified,
		&a.LastPasswordChange, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.OTPCode = mapNullString(otpCode)
	a.OTPCreatedAt = mapNullTime(otpCreatedAt)
	return a, nil
}
