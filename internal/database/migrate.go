package database

import (
	sessionrepo "github.com/captionrelay/captionrelay/internal/repository/session"
	"gorm.io/gorm"
)

func MigrateDB(db *gorm.DB) {
	db.AutoMigrate(
		&sessionrepo.BatchEntity{},
	)
}
