package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentMock(t *testing.T) (*CommentRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCommentRepo(db), mock
}

// Saving a comment with its current content matches the row but changes
// nothing; MySQL then reports zero affected rows and that must not be
// treated as a missing comment.
func TestCommentUpdateContentUnchangedValue(t *testing.T) {
	repo, mock := newCommentMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE comments SET content=? WHERE id=?")).
		WithArgs("same text", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateContent(context.Background(), 1, "same text"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentDeleteMissingRow(t *testing.T) {
	repo, mock := newCommentMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE id=?")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentListByVideoPaginates(t *testing.T) {
	repo, mock := newCommentMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM comments WHERE video_id=?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	rows := sqlmock.NewRows([]string{
		"id", "video_id", "content", "created_at",
		"owner_id", "username", "full_name", "avatar_url",
	})
	for i := 0; i < 5; i++ {
		rows.AddRow(i+1, 1, "c", time.Now(), 2, "bob", "Bob", "")
	}
	mock.ExpectQuery("ORDER BY c.created_at DESC\\s+LIMIT \\? OFFSET \\?").
		WithArgs(1, 5, 5).
		WillReturnRows(rows)

	got, total, err := repo.ListByVideo(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, got, 5)
}
