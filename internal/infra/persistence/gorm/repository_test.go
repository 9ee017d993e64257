package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/infra/persistence/persistencetest"
	"github.com/team-pig/backend/internal/infra/setup"
	"github.com/team-pig/backend/internal/repository"
)

// openTestDB returns a migrated SQLite database private to the test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "board.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, setup.MigrateDB(db))
	return db
}

func TestRepositories(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistencetest.Repos {
		db := openTestDB(t)
		return persistencetest.Repos{
			Users:   NewGormUserRepository(db),
			Rooms:   NewGormRoomRepository(db),
			Board:   NewGormBoardRepository(db),
			Content: NewGormContentRepository(db),
		}
	})
}

func TestVersionedWrites_StaleReadConflicts(t *testing.T) {
	db := openTestDB(t)
	rooms := NewGormRoomRepository(db)
	board := NewGormBoardRepository(db)

	room := &domain.Room{Name: "R", MasterID: 1, InviteCode: "abc"}
	require.NoError(t, rooms.Create(context.Background(), room))
	require.NoError(t, board.CreateBucket(context.Background(), &domain.Bucket{ID: "a", RoomID: room.ID, Name: "A"}))

	var bucket domain.Bucket
	require.NoError(t, db.First(&bucket, "id = ?", "a").Error)
	stale := bucket
	require.NoError(t, writeCardOrder(db, &bucket, domain.Sequence{}))
	assert.Equal(t, uint(1), bucket.Version)
	assert.ErrorIs(t, writeCardOrder(db, &stale, domain.Sequence{"x"}), repository.ErrConflict)

	var order domain.BucketOrder
	require.NoError(t, db.First(&order, "room_id = ?", room.ID).Error)
	staleOrder := order
	require.NoError(t, writeBucketOrder(db, &order, domain.Sequence{"a"}))
	assert.ErrorIs(t, writeBucketOrder(db, &staleOrder, domain.Sequence{}), repository.ErrConflict)

	stored, err := board.GetBucketOrder(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Sequence{"a"}, stored.Sequence(), "the losing write changed nothing")
}

func TestIsDuplicateEntryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"mysql 1062", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), true},
		{"mysql other", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, false},
		{"postgres 23505", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: rooms.invite_code (2067)"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateEntryError(tt.err))
		})
	}
}
