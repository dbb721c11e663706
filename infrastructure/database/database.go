package database

import (
	"fmt"
	"net"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"face-insight-api/domain/models"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string // file path or sqlite URI when Driver is sqlite
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
}

// NewDatabase opens the store. No connection is held afterwards: with
// MaxIdleConns at 0 every released connection is closed, so each request
// dials its own.
func NewDatabase(config DatabaseConfig) (*gorm.DB, error) {
	dialector, err := newDialector(config)
	if err != nil {
		return nil, err
	}

	logMode := gormlogger.Warn
	if config.Debug {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)

	return db, nil
}

func newDialector(config DatabaseConfig) (gorm.Dialector, error) {
	switch config.Driver {
	case DriverMySQL, "":
		return mysql.Open(MySQLDSN(config)), nil
	case DriverSQLite:
		return sqlite.Open(config.DBName), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
}

// MySQLDSN builds the go-sql-driver DSN for config.
func MySQLDSN(config DatabaseConfig) string {
	dsn := gomysql.NewConfig()
	dsn.User = config.User
	dsn.Passwd = config.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(config.Host, config.Port)
	dsn.DBName = config.DBName
	dsn.Timeout = 5 * time.Second
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

// Migrate creates the four result tables. The production schema is owned by
// the ingestion pipeline, so this only runs for local sqlite databases and tests.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.FaceImage{},
		&models.Gender{},
		&models.Race{},
		&models.Age{},
	); err != nil {
		return fmt.Errorf("failed to run auto migrations: %w", err)
	}
	return nil
}

// Close releases the underlying sql.DB.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
