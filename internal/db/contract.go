package db

// Table and column names for the journal schema. Every statement that touches
// storage is built from these constants; there is no runtime check for drift.
const (
	ColumnID = "_id"

	TripTable          = "MapJournalTrips"
	TripColumnName     = "Name"
	TripColumnDesc     = "Description"
	PointTable         = "MapJournalPoint"
	PointColumnTripID  = "TripId"
	PointColumnTitle   = "Title"
	PointColumnLat     = "Latitude"
	PointColumnLon     = "Longitude"
	PointColumnAlt     = "Altitude"
	PointColumnTime    = "Time"
	PointColumnAddress = "Address"
	PointColumnJournal = "Journal"
	MediaTable         = "MapJournalMedia"
	MediaColumnPointID = "PointId"
	MediaColumnCaption = "Caption"
	MediaColumnPath    = "Path"
)

// Projections list every column of a table in decode order.
var (
	TripColumns = []string{
		ColumnID,
		TripColumnName,
		TripColumnDesc,
	}

	PointColumns = []string{
		ColumnID,
		PointColumnTitle,
		PointColumnTripID,
		PointColumnLat,
		PointColumnLon,
		PointColumnAlt,
		PointColumnTime,
		PointColumnAddress,
		PointColumnJournal,
	}

	MediaColumns = []string{
		ColumnID,
		MediaColumnPointID,
		MediaColumnCaption,
		MediaColumnPath,
	}
)

// Schema DDL, in dependency order: points reference trips, media reference points.
// Foreign keys are declared but not enforced (PRAGMA foreign_keys stays off),
// and nothing cascades at the engine level. AUTOINCREMENT keeps ids of deleted
// rows from being handed out again, so rows left behind by a delete stay orphaned.
const (
	createTripTable = `CREATE TABLE IF NOT EXISTS ` + TripTable + ` (
    ` + ColumnID + ` INTEGER PRIMARY KEY AUTOINCREMENT,
    ` + TripColumnName + ` TEXT,
    ` + TripColumnDesc + ` TEXT
);`

	createPointTable = `CREATE TABLE IF NOT EXISTS ` + PointTable + ` (
    ` + ColumnID + ` INTEGER PRIMARY KEY AUTOINCREMENT,
    ` + PointColumnTripID + ` INTEGER,
    ` + PointColumnTitle + ` TEXT,
    ` + PointColumnLat + ` REAL,
    ` + PointColumnLon + ` REAL,
    ` + PointColumnAlt + ` REAL,
    ` + PointColumnTime + ` INTEGER,
    ` + PointColumnAddress + ` TEXT,
    ` + PointColumnJournal + ` TEXT,
    FOREIGN KEY (` + PointColumnTripID + `) REFERENCES ` + TripTable + `(` + ColumnID + `)
);`

	createMediaTable = `CREATE TABLE IF NOT EXISTS ` + MediaTable + ` (
    ` + ColumnID + ` INTEGER PRIMARY KEY AUTOINCREMENT,
    ` + MediaColumnPointID + ` INTEGER,
    ` + MediaColumnCaption + ` TEXT,
    ` + MediaColumnPath + ` TEXT,
    FOREIGN KEY (` + MediaColumnPointID + `) REFERENCES ` + PointTable + `(` + ColumnID + `)
);`

	idxPointTrip  = `CREATE INDEX IF NOT EXISTS idx_point_trip ON ` + PointTable + `(` + PointColumnTripID + `);`
	idxMediaPoint = `CREATE INDEX IF NOT EXISTS idx_media_point ON ` + MediaTable + `(` + MediaColumnPointID + `);`
)

// schemaDDL lists all CREATE statements in the order they must run.
var schemaDDL = []string{
	createTripTable,
	createPointTable,
	createMediaTable,
	idxPointTrip,
	idxMediaPoint,
}
