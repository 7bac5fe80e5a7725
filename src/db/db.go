package db

import (
	"fmt"
	"log"
	"net/url"
	"roomrent/src/config"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	_db, err := gorm.Open(dialector(config.GetDatabaseDriver()), NewConfig())
	if err != nil {
		log.Printf("Error connecting to database: %s\n", err.Error())
		panic(err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		log.Fatalf("Error establishing connection to database: %s\n", err.Error())
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	db = _db
	return _db
}

func dialector(driver string) gorm.Dialector {
	switch driver {
	case "sqlite":
		return sqlite.Open(config.GetSQLitePath())
	default:
		return postgres.Open(config.GetDSN())
	}
}

// NewConfig is the gorm configuration shared by every connection. Timestamps
// are written in UTC and driver errors are translated to gorm errors.
func NewConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func NewDB(newdb *gorm.DB) {
	db = newdb
}

// OpenMemory opens a named in-memory sqlite database. It lives until the
// returned connection is closed.
func OpenMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name))
	gdb, err := gorm.Open(sqlite.Open(dsn), NewConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}
