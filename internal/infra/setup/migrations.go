package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/team-pig/backend/internal/domain"
)

// Models lists every table the service owns, parents first.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Room{},
		&domain.RoomMember{},
		&domain.BucketOrder{},
		&domain.Bucket{},
		&domain.Card{},
		&domain.Todo{},
	}
}

// MigrateDB creates or updates the schema.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto-migrate %T: %w", model, err)
		}
	}
	logrus.Info("Database migration completed successfully")
	return nil
}
