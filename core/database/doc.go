// Package database opens the relational store behind the visit tracker.
//
// It wraps GORM and picks the dialect from configuration: MySQL for
// deployments, SQLite for local runs and tests (":memory:" is supported).
//
// # Schema Inspection
//
// GetTableColumns reads the live column list of a table so the integrity
// feature can compare it with the visits model.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "visits")
package database
