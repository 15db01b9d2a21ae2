package db

import (
	"github.com/glebarez/sqlite"
	"github.com/overplay/spotify-broker/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the SQLite database and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(&models.LinkedAccount{}); err != nil {
		return nil, err
	}

	return gdb, nil
}
