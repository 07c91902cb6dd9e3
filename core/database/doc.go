// Package database handles the optional SQL connection used by the audit trail.
//
// It wraps GORM and configures either a MySQL connection (DSN with connect, read and
// write timeouts) or a SQLite database, which tests open as ":memory:".
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Optional database connection failed", zap.Error(err))
//	}
package database
