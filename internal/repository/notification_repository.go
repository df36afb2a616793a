package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// NotificationRepository provides database access for notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, read, related_id, created_at, read_at`

// List returns notifications for a user based on filters with total count.
func (r *NotificationRepository) List(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, int, error) {
	baseQuery := `FROM notifications WHERE user_id = $1`
	args := []interface{}{userID}

	var conditions []string
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}
	if filter.Read != nil {
		conditions = append(conditions, fmt.Sprintf("read = $%d", len(args)+1))
		args = append(args, *filter.Read)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(message) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := models.NormalizePageQuery(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", notificationColumns, baseQuery, page.Limit, page.Offset())

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	return notifications, total, nil
}

// FindByID returns a notification scoped to its owner.
func (r *NotificationRepository) FindByID(ctx context.Context, userID, id string) (*models.Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE id = $1 AND user_id = $2 LIMIT 1`, notificationColumns)
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &n, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// Create inserts a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, user_id, type, title, message, read, related_id, created_at)
		VALUES (:id, :user_id, :type, :title, :message, :read, :related_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// MarkRead marks a single notification as read. Returns the number of rows affected.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string, readAt time.Time) (int64, error) {
	const query = `UPDATE notifications SET read = TRUE, read_at = $3 WHERE id = $1 AND user_id = $2 AND read = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, userID, readAt)
	if err != nil {
		return 0, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notification read: %w", err)
	}
	return affected, nil
}

// MarkAllRead marks every unread notification for a user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error) {
	const query = `UPDATE notifications SET read = TRUE, read_at = $2 WHERE user_id = $1 AND read = FALSE`
	res, err := r.db.ExecContext(ctx, query, userID, readAt)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return affected, nil
}

// Delete removes a notification. Returns the number of rows affected.
func (r *NotificationRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	const query = `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete notification: %w", err)
	}
	return affected, nil
}
