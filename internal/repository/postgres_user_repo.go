package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jaehoon-dev/commerce-api/internal/domain"
)

// PostgresUserRepo implements domain.UserRepository using PostgreSQL.
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo creates a new repository instance.
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `
	u.id, u.email, u.display_name, u.password_hash, r.name,
	u.mfa_enabled, COALESCE(u.mfa_secret, ''), u.created_at, u.updated_at
`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Role,
		&user.MFAEnabled,
		&user.MFASecret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by their email address, joining with the roles table.
func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	// We join with 'roles' to get the role name directly, avoiding N+1 queries.
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.email = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by their UUID.
func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.id = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// List returns users ordered by creation time, newest first.
func (r *PostgresUserRepo) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON u.role_id = r.id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Create inserts a new user. The caller supplies the ID and hashed password.
func (r *PostgresUserRepo) Create(ctx context.Context, user *domain.User) error {
	// 1. Resolve Role Name to ID
	var roleID string
	err := r.db.QueryRowContext(ctx, "SELECT id FROM roles WHERE name = $1", user.Role).Scan(&roleID)
	if err != nil {
		return fmt.Errorf("role '%s' not found: %w", user.Role, err)
	}

	// 2. Insert User
	query := `
		INSERT INTO users (id, email, display_name, password_hash, role_id, mfa_enabled, mfa_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	var mfaSecret sql.NullString
	if user.MFASecret != "" {
		mfaSecret.String = user.MFASecret
		mfaSecret.Valid = true
	}

	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		roleID,
		user.MFAEnabled,
		mfaSecret,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Update modifies an existing user's profile and MFA state.
func (r *PostgresUserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET display_name = $1, mfa_enabled = $2, mfa_secret = $3, updated_at = $4
		WHERE id = $5
	`

	user.UpdatedAt = time.Now()

	var mfaSecret sql.NullString
	if user.MFASecret != "" {
		mfaSecret.String = user.MFASecret
		mfaSecret.Valid = true
	}

	result, err := r.db.ExecContext(ctx, query, user.DisplayName, user.MFAEnabled, mfaSecret, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a user by ID.
func (r *PostgresUserRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// LogSecurityEvent inserts an immutable record into the audit_logs table.
func (r *PostgresUserRepo) LogSecurityEvent(ctx context.Context, userID, eventType, ip string, metadata map[string]interface{}) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO audit_logs (user_id, event_type, ip_address, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	// Handle case where userID is empty (e.g. anonymous failed login)
	// The schema allows user_id to be NULL.
	var uid sql.NullString
	if userID != "" {
		uid.String = userID
		uid.Valid = true
	}

	_, err = r.db.ExecContext(ctx, query, uid, eventType, ip, metaJSON, time.Now())
	return err
}
