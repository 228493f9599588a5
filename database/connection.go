package database

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq" // PostgreSQL driver for migrations
	_ "modernc.org/sqlite" // pure-Go SQLite driver, registered as "sqlite"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds database configuration
type Config struct {
	Driver   string
	Path     string // sqlite file
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	DSN      string // overrides Host/Port/Name/User/Password for postgres and mysql
}

// Validate checks the driver and the fields it needs.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return NewValidationError("path", "required for sqlite")
		}
	case DriverPostgres, DriverMySQL:
		if c.DSN == "" && c.Host == "" {
			return NewValidationError("host", "required when no DSN is set")
		}
	default:
		return NewValidationErrorWithValue("driver", "must be sqlite, postgres or mysql", c.Driver)
	}
	return nil
}

func (c Config) postgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		c.Host, c.Port, c.Name, c.User, c.Password)
}

// mysqlDSN builds a go-sql-driver DSN. multiStatements is needed by
// migration files that hold more than one statement.
func (c Config) mysqlDSN(multiStatements bool) (string, error) {
	var mc *mysql.Config
	if c.DSN != "" {
		parsed, err := mysql.ParseDSN(c.DSN)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		mc = parsed
	} else {
		mc = mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Name
		mc.User = c.User
		mc.Passwd = c.Password
	}
	mc.MultiStatements = multiStatements
	return mc.FormatDSN(), nil
}

// openSQL opens a plain database/sql handle for cfg. Used where a driver
// outside gorm needs the connection, such as schema migrations.
func openSQL(cfg Config) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Driver {
	case DriverSQLite:
		conn, err = sql.Open("sqlite", cfg.Path)
	case DriverPostgres:
		conn, err = sql.Open("postgres", cfg.postgresDSN())
	case DriverMySQL:
		dsn, dsnErr := cfg.mysqlDSN(true)
		if dsnErr != nil {
			return nil, dsnErr
		}
		conn, err = sql.Open("mysql", dsn)
	default:
		return nil, NewValidationErrorWithValue("driver", "unsupported", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}
	return conn, nil
}
