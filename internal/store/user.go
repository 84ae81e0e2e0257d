package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/saferoadsa/saferoad/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(
		&u.ID, &u.Email, &u.Password, &u.Name, &u.Phone, &u.City, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, email, password, name, phone, city, role, created_at`

// Create inserts a new user with the given (already hashed) password and the
// default user role.
func (s *UserStore) Create(email, passwordHash, name, phone, city string) (*model.User, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, password, name, phone, city, role) VALUES (?, ?, ?, ?, ?, ?, 'user')`,
		id, email, passwordHash, name, phone, city,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Names returns a map of user ID to display name for all users. Used when
// report lists need reporter names attached.
func (s *UserStore) Names() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT id, name FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list user names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan user name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// SetRole changes a user's role. Used by operators to promote municipal staff.
func (s *UserStore) SetRole(id, role string) error {
	_, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}
