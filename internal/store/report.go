package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/saferoadsa/saferoad/internal/model"
)

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

func scanReport(scanner interface{ Scan(...any) error }) (*model.Report, error) {
	var r model.Report
	var photos string
	err := scanner.Scan(
		&r.ID, &r.UserID, &r.Type, &r.Title, &r.Description,
		&r.Location.Lat, &r.Location.Lng, &r.Location.Address,
		&r.Severity, &r.Status, &photos, &r.Upvotes,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(photos), &r.Photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}
	if r.Photos == nil {
		r.Photos = []string{}
	}
	return &r, nil
}

const reportCols = `id, user_id, type, title, description, latitude, longitude, address,
	severity, status, photos, upvotes, created_at, updated_at`

// Create inserts a new report. Status starts at pending and upvotes at zero
// regardless of what the caller submits.
func (s *ReportStore) Create(userID, reportType, title, description string, loc model.Location, severity string, photos []string) (*model.Report, error) {
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return nil, fmt.Errorf("encode photos: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO reports (id, user_id, type, title, description, latitude, longitude, address, severity, status, photos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)`,
		id, userID, reportType, title, description,
		loc.Lat, loc.Lng, loc.Address, severity, string(photosJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReportStore) GetByID(id string) (*model.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportCols+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

// List returns all reports, newest first.
func (s *ReportStore) List() ([]model.Report, error) {
	rows, err := s.db.Query(`SELECT ` + reportCols + ` FROM reports ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// ReportUpdate holds the PATCH-able report fields. Nil fields are left
// untouched; updated_at is stamped on every call.
type ReportUpdate struct {
	Type        *string
	Title       *string
	Description *string
	Location    *model.Location
	Severity    *string
	Status      *string
	Photos      []string
}

// Update applies a partial update to the report with the given ID and returns
// the updated row. It returns (nil, nil) when the ID does not exist; other
// rows are never touched.
func (s *ReportStore) Update(id string, upd ReportUpdate) (*model.Report, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if upd.Type != nil {
		existing.Type = *upd.Type
	}
	if upd.Title != nil {
		existing.Title = *upd.Title
	}
	if upd.Description != nil {
		existing.Description = *upd.Description
	}
	if upd.Location != nil {
		existing.Location = *upd.Location
	}
	if upd.Severity != nil {
		existing.Severity = *upd.Severity
	}
	if upd.Status != nil {
		existing.Status = *upd.Status
	}
	if upd.Photos != nil {
		existing.Photos = upd.Photos
	}

	photosJSON, err := json.Marshal(existing.Photos)
	if err != nil {
		return nil, fmt.Errorf("encode photos: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE reports SET type = ?, title = ?, description = ?, latitude = ?, longitude = ?,
		 address = ?, severity = ?, status = ?, photos = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		existing.Type, existing.Title, existing.Description,
		existing.Location.Lat, existing.Location.Lng, existing.Location.Address,
		existing.Severity, existing.Status, string(photosJSON), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	return s.GetByID(id)
}

// Upvote increments the report's upvote counter by exactly one and returns
// the updated row, or (nil, nil) if the report does not exist.
func (s *ReportStore) Upvote(id string) (*model.Report, error) {
	result, err := s.db.Exec(`UPDATE reports SET upvotes = upvotes + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("upvote report: %w", err)
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

func (s *ReportStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}
