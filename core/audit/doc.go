// Package audit records the outcome of every mutating operation (promotion,
// replication, repair, update) in a SQL table through GORM.
//
// Recording is best effort: Logged turns recorder failures into warnings, and Nop is
// used when no database is configured.
package audit
