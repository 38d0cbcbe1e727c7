package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, user_id, token_hash, device_info, ip_address, user_agent,
	expires_at, created_at`

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		s          domain.Session
		deviceInfo string
		ipAddress  sql.NullString
		userAgent  sql.NullString
	)

	err := row.Scan(
		&s.ID, &s.UserID, &s.TokenHash, &deviceInfo, &ipAddress, &userAgent,
		&s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}

	s.IPAddress = mapNullStringPtr(ipAddress)
	s.UserAgent = mapNullStringPtr(userAgent)

	s.DeviceInfo, err = unmarshalJSON(deviceInfo)
	if err != nil {
		return domain.Session{}, err
	}

	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	deviceInfo, err := marshalJSON(s.DeviceInfo)
	if err != nil {
		return err
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, device_info, ip_address, user_agent, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, deviceInfo,
		mapOptionalString(s.IPAddress), mapOptionalString(s.UserAgent),
		s.ExpiresAt.UTC(), s.CreatedAt,
	)
	return mapUniqueViolation(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE token_hash = ? AND expires_at > ?`,
		tokenHash, time.Now().UTC())

	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = ? AND expires_at > ?
		ORDER BY created_at DESC`,
		userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionsRepo) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

func (r *sessionsRepo) DeleteUserSession(ctx context.Context, userID, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id = ? AND user_id = ?`,
		sessionID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sessionsRepo) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
