package db

import (
	"database/sql"
	"strings"
)

// SQL statements for the data access layer, derived from the schema contract.
// Identity filters use equality on _id.
var (
	InsertTrip     = insertStmt(TripTable, TripColumns[1:])
	SelectTrip     = selectStmt(TripTable, TripColumns) + " WHERE " + ColumnID + " = ?"
	SelectAllTrips = selectStmt(TripTable, TripColumns) + " ORDER BY " + ColumnID
	UpdateTrip     = updateStmt(TripTable, TripColumns[1:])
	DeleteTrip     = deleteStmt(TripTable, ColumnID)

	InsertPoint        = insertStmt(PointTable, PointColumns[1:])
	SelectPoint        = selectStmt(PointTable, PointColumns) + " WHERE " + ColumnID + " = ?"
	SelectPointsByTrip = selectStmt(PointTable, PointColumns) + " WHERE " + PointColumnTripID + " = ? ORDER BY " + PointColumnTime + ", " + ColumnID
	UpdatePoint        = updateStmt(PointTable, PointColumns[1:])
	DeletePoint        = deleteStmt(PointTable, ColumnID)
	DeletePointsByTrip = deleteStmt(PointTable, PointColumnTripID)

	InsertMedia        = insertStmt(MediaTable, MediaColumns[1:])
	SelectMedia        = selectStmt(MediaTable, MediaColumns) + " WHERE " + ColumnID + " = ?"
	SelectMediaByPoint = selectStmt(MediaTable, MediaColumns) + " WHERE " + MediaColumnPointID + " = ? ORDER BY " + ColumnID
	UpdateMedia        = updateStmt(MediaTable, MediaColumns[1:])
	DeleteMedia        = deleteStmt(MediaTable, ColumnID)
	DeleteMediaByPoint = deleteStmt(MediaTable, MediaColumnPointID)

	// Orphans: rows whose parent row no longer exists.
	SelectOrphanMedia = selectStmt(MediaTable, MediaColumns) +
		" WHERE " + MediaColumnPointID + " NOT IN (SELECT " + ColumnID + " FROM " + PointTable + ")" +
		" ORDER BY " + ColumnID
	SelectOrphanPoints = selectStmt(PointTable, PointColumns) +
		" WHERE " + PointColumnTripID + " NOT IN (SELECT " + ColumnID + " FROM " + TripTable + ")" +
		" ORDER BY " + ColumnID
	DeleteOrphanMedia = "DELETE FROM " + MediaTable +
		" WHERE " + MediaColumnPointID + " NOT IN (SELECT " + ColumnID + " FROM " + PointTable + ")"
	DeleteOrphanPoints = "DELETE FROM " + PointTable +
		" WHERE " + PointColumnTripID + " NOT IN (SELECT " + ColumnID + " FROM " + TripTable + ")"
)

// insertStmt builds "INSERT INTO t (a, b) VALUES (?, ?)".
func insertStmt(table string, cols []string) string {
	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) + ")"
}

// selectStmt builds "SELECT a, b FROM t".
func selectStmt(table string, cols []string) string {
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + table
}

// updateStmt builds "UPDATE t SET a = ?, b = ? WHERE _id = ?".
func updateStmt(table string, cols []string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE " + ColumnID + " = ?"
}

// deleteStmt builds "DELETE FROM t WHERE col = ?".
func deleteStmt(table, col string) string {
	return "DELETE FROM " + table + " WHERE " + col + " = ?"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// ToNullString converts a *string to sql.NullString.
func ToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// FromNullString converts a sql.NullString to *string.
func FromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
