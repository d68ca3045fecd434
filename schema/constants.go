package schema

// Custom string types for type safety.
type (
	// FileStatus represents the change status of a file in a diff.
	FileStatus string

	// OutputMode represents the format of the sheet-mode output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// All file statuses supported. Any other diff kind maps to modified.
const (
	AddedStatus    FileStatus = "added"
	RemovedStatus  FileStatus = "removed"
	ModifiedStatus FileStatus = "modified"
	RenamedStatus  FileStatus = "renamed"
)

// All output modes supported in sheet mode.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// UnassignedTeam is the synthetic team for authors missing from the roster.
const UnassignedTeam = "Unassigned"

// UnmatchedGroup is the sentinel group for file paths that belong to no
// discovered project directory.
const UnmatchedGroup = "Unmatched"
