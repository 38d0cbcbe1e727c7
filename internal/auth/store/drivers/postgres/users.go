package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
	"github.com/ch1pu/agentinvest/internal/auth/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, avatar_url,
	email_verified, email_verification_token, password_reset_token, password_reset_expires,
	last_login, subscription_tier, subscription_expires, preferences,
	created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                 domain.User
		phone             sql.NullString
		avatarURL         sql.NullString
		verificationToken sql.NullString
		resetToken        sql.NullString
		resetExpires      sql.NullTime
		lastLogin         sql.NullTime
		subExpires        sql.NullTime
		preferences       []byte
		deletedAt         sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone, &avatarURL,
		&u.EmailVerified, &verificationToken, &resetToken, &resetExpires,
		&lastLogin, &u.SubscriptionTier, &subExpires, &preferences,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Phone = mapNullStringPtr(phone)
	u.AvatarURL = mapNullStringPtr(avatarURL)
	u.EmailVerificationToken = mapNullStringPtr(verificationToken)
	u.PasswordResetToken = mapNullStringPtr(resetToken)
	u.PasswordResetExpires = mapNullTimePtr(resetExpires)
	u.LastLogin = mapNullTimePtr(lastLogin)
	u.SubscriptionExpires = mapNullTimePtr(subExpires)
	u.DeletedAt = mapNullTimePtr(deletedAt)

	u.Preferences, err = unmarshalJSON(preferences)
	if err != nil {
		return domain.User{}, err
	}

	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	prefs, err := marshalJSON(u.Preferences)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, phone, avatar_url,
			email_verified, email_verification_token, subscription_tier, preferences,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		mapOptionalString(u.Phone), mapOptionalString(u.AvatarURL),
		u.EmailVerified, mapOptionalString(u.EmailVerificationToken),
		u.SubscriptionTier, prefs, u.CreatedAt, u.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = $1 AND deleted_at IS NULL`, id)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE email = $1 AND deleted_at IS NULL`, email)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (domain.User, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.FirstName != nil {
		addSet("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		addSet("last_name", *p.LastName)
	}
	if p.Phone != nil {
		addSet("phone", *p.Phone)
	}
	if p.AvatarURL != nil {
		addSet("avatar_url", *p.AvatarURL)
	}
	if p.Preferences != nil {
		prefs, err := marshalJSON(p.Preferences)
		if err != nil {
			return domain.User{}, err
		}
		addSet("preferences", prefs)
	}

	if len(sets) > 0 {
		addSet("updated_at", time.Now().UTC())
		args = append(args, userID)

		res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
			UPDATE users SET %s
			WHERE id = $%d AND deleted_at IS NULL`,
			strings.Join(sets, ", "), len(args)), args...)
		if err != nil {
			return domain.User{}, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return domain.User{}, err
		}
		if affected == 0 {
			return domain.User{}, store.ErrNotFound
		}
	}

	return r.GetUserByID(ctx, userID)
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login = $1
		WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) SetEmailVerificationToken(ctx context.Context, userID string, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET email_verification_token = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL`,
		token, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET email_verified = TRUE, email_verification_token = NULL, updated_at = now()
		WHERE email = $1 AND deleted_at IS NULL`,
		email)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) SetPasswordResetToken(ctx context.Context, email string, token string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_reset_token = $1, password_reset_expires = $2, updated_at = now()
		WHERE email = $3 AND deleted_at IS NULL`,
		token, expiresAt.UTC(), email)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, email string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, password_reset_token = NULL,
			password_reset_expires = NULL, updated_at = now()
		WHERE email = $2 AND deleted_at IS NULL`,
		newHash, email)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) UpdateSubscription(ctx context.Context, userID string, tier string, expiresAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET subscription_tier = $1, subscription_expires = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL`,
		tier, mapOptionalTime(expiresAt), userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) SoftDeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
