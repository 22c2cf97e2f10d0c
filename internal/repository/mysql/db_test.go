package mysql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Anon_Board/internal/config"
	"Anon_Board/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         ":memory:",
		AutoMigrate: true,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, userID string) *model.User {
	t.Helper()
	u := &model.User{UserID: userID, PasswordHash: "x"}
	require.NoError(t, (&UserRepository{DB: db}).Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint64, title string) *model.Post {
	t.Helper()
	p := &model.Post{AuthorID: authorID, Title: title, Content: "body of " + title}
	require.NoError(t, (&PostRepository{DB: db}).Create(context.Background(), p))
	return p
}

func TestInitDBUnsupportedDriver(t *testing.T) {
	_, err := InitDB(config.DatabaseConfig{Driver: "postgres", DSN: "x"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"mysql deadlock", &mysqldrv.MySQLError{Number: 1213}, true},
		{"mysql lock wait", fmt.Errorf("update: %w", &mysqldrv.MySQLError{Number: 1205}), true},
		{"mysql duplicate", &mysqldrv.MySQLError{Number: 1062}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked", fmt.Errorf("tx: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"not found", gorm.ErrRecordNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
