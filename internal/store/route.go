package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/saferoadsa/saferoad/internal/model"
)

type RouteStore struct {
	db *sql.DB
}

func NewRouteStore(db *sql.DB) *RouteStore {
	return &RouteStore{db: db}
}

func scanRoute(scanner interface{ Scan(...any) error }) (*model.Route, error) {
	var rt model.Route
	var polyline sql.NullString
	var active int
	err := scanner.Scan(
		&rt.ID, &rt.UserID, &rt.Name, &rt.From, &rt.To, &polyline, &active, &rt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rt.Active = active != 0
	if polyline.Valid {
		rt.Polyline = &polyline.String
	}
	return &rt, nil
}

const routeCols = `id, user_id, name, from_address, to_address, polyline, active, created_at`

// Create inserts a new route. Routes start active.
func (s *RouteStore) Create(userID, name, from, to string, polyline *string) (*model.Route, error) {
	var poly sql.NullString
	if polyline != nil {
		poly = sql.NullString{String: *polyline, Valid: true}
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO routes (id, user_id, name, from_address, to_address, polyline, active) VALUES (?, ?, ?, ?, ?, ?, 1)`,
		id, userID, name, from, to, poly,
	)
	if err != nil {
		return nil, fmt.Errorf("insert route: %w", err)
	}
	return s.GetByID(id)
}

func (s *RouteStore) GetByID(id string) (*model.Route, error) {
	row := s.db.QueryRow(`SELECT `+routeCols+` FROM routes WHERE id = ?`, id)
	rt, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	return rt, nil
}

// ListByUser returns the user's routes in creation order.
func (s *RouteStore) ListByUser(userID string) ([]model.Route, error) {
	rows, err := s.db.Query(`SELECT `+routeCols+` FROM routes WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, *rt)
	}
	return routes, rows.Err()
}

// SetActive toggles the route's active flag, scoped to the owning user.
// Returns (nil, nil) when no route matches both id and userID.
func (s *RouteStore) SetActive(id, userID string, active bool) (*model.Route, error) {
	a := 0
	if active {
		a = 1
	}
	result, err := s.db.Exec(`UPDATE routes SET active = ? WHERE id = ? AND user_id = ?`, a, id, userID)
	if err != nil {
		return nil, fmt.Errorf("set route active: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// Delete removes the route, scoped to the owning user. Returns false when no
// route matched.
func (s *RouteStore) Delete(id, userID string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM routes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete route: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
