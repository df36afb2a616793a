package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

func TestUnreadCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadReportsAffectedRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE, read_at = $3 WHERE id = $1 AND user_id = $2 AND read = FALSE")).
		WithArgs("n1", "u1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.MarkRead(context.Background(), "u1", "n1", now)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotificationsFiltersByRead(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	unread := false
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "message", "read", "related_id", "created_at", "read_at"}).
		AddRow("n1", "u1", string(models.NotificationTypeSecurity), "Alert", "Fight detected", false, nil, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE user_id = $1 AND read = $2 ORDER BY created_at DESC LIMIT 10 OFFSET 0")).
		WithArgs("u1", unread).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = $2")).
		WithArgs("u1", unread).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	notifications, total, err := repo.List(context.Background(), "u1", models.NotificationFilter{Read: &unread})
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotificationScopedToOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE id = $1 AND user_id = $2")).
		WithArgs("n1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Delete(context.Background(), "u2", "n1")
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
