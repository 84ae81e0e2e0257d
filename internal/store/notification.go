package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/saferoadsa/saferoad/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var read int
	err := scanner.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Read = read != 0
	return &n, nil
}

const notificationCols = `id, user_id, type, title, message, read, created_at`

func (s *NotificationStore) Create(userID, notifType, title, message string) (*model.Notification, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO notifications (id, user_id, type, title, message) VALUES (?, ?, ?, ?, ?)`,
		id, userID, notifType, title, message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id string) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListByUser returns the user's notifications, newest first.
func (s *NotificationStore) ListByUser(userID string) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkRead flags the notification as read, scoped to the owning user.
// Returns false when no notification matched.
func (s *NotificationStore) MarkRead(id, userID string) (bool, error) {
	result, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
