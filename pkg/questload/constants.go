package questload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Import completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied the table drop
	ExitExecutionFailed = 13 // Insert or update statement failed
	ExitSourceMissing   = 14 // A source CSV file was not found
	ExitSchemaFailed    = 15 // Dropping or creating the quest table failed
	ExitMalformedSource = 16 // A source CSV row could not be parsed
)

const (
	// DefaultTableName is the destination table.
	DefaultTableName = "Quest"

	// DefaultEnglishPath and DefaultJapanesePath are relative to the CSV base directory.
	DefaultEnglishPath  = "rsrc/csv/eng/Quest.csv"
	DefaultJapanesePath = "rsrc/csv/jp/Quest.csv"

	// DefaultSkipRows is the number of metadata lines preceding the type row.
	// Data starts on line DefaultSkipRows+2.
	DefaultSkipRows = 2

	// DefaultHeaderRow is the 1-based line holding column names.
	DefaultHeaderRow = 2

	// Column names looked up in the header row.
	DefaultNameColumn      = "Name"
	DefaultKeyColumn       = "Id"
	DefaultExpansionColumn = "Expansion"

	// MaxNameLength is the VARCHAR width of the name and key columns.
	MaxNameLength = 255

	// Positions used when a column name is absent from the header row.
	DefaultNameIndex      = 1
	DefaultKeyIndex       = 2
	DefaultExpansionIndex = 3

	// DefaultTimeout bounds a whole import run.
	DefaultTimeout = 10 * time.Minute

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultSQLitePath is used when the sqlite driver is selected without a path.
	DefaultSQLitePath = "questload.db"

	// AppName is reported to PostgreSQL as application_name.
	AppName = "questload"
)
