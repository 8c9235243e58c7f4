package questload

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// QuestRecord is one row of the quest table.
type QuestRecord struct {
	// ID is assigned by the database; zero until read back.
	ID int64

	NameEng string

	// NameJP stays nil until a Japanese row with the same TableName is applied.
	NameJP *string

	// Expansion is nil when the source cell was blank.
	Expansion *int

	// TableName is the join key between the English and Japanese sheets.
	// Not unique: duplicates all receive the same Japanese update.
	TableName string

	// Line is the 1-based source line, for diagnostics only.
	Line int
}

// NameUpdate is a Japanese name to apply to every record with TableName.
type NameUpdate struct {
	NameJP    string
	TableName string
	Line      int
}

// UpdateResult summarizes a Japanese update pass.
type UpdateResult struct {
	// Applied counts update statements that touched at least one record.
	Applied int

	// Unmatched counts update statements whose key matched nothing.
	Unmatched int

	// RowsAffected totals records touched; exceeds Applied when keys repeat.
	RowsAffected int64
}

// Add records the outcome of one update statement.
func (r *UpdateResult) Add(rowsAffected int64) {
	if rowsAffected > 0 {
		r.Applied++
	} else {
		r.Unmatched++
	}
	r.RowsAffected += rowsAffected
}

// ImportReport is the outcome of one import run.
type ImportReport struct {
	RunID     uuid.UUID
	TableName string
	DryRun    bool

	EnglishRows  int
	Inserted     int
	JapaneseRows int

	// SkippedUpdates counts Japanese rows with a blank name or key.
	SkippedUpdates int

	Update UpdateResult

	Elapsed time.Duration
}

// Coverage describes how much of an imported table carries Japanese names.
type Coverage struct {
	TableName  string
	Total      int
	Translated int

	// Untranslated lists keys with no Japanese name, once each, in id order.
	Untranslated []string

	// DuplicateKeys counts keys shared by more than one record.
	DuplicateKeys int
}

// SheetLayout describes where quest columns live in a sheet export.
//
// Exports carry an index line, a column-name line and a type line before the
// data. Columns are found by name on HeaderRow; when a name is missing the
// matching *Index position is used instead.
type SheetLayout struct {
	// SkipRows counts physical metadata lines, blank ones included, before
	// the type line.
	SkipRows int

	// HeaderRow is the 1-based line holding column names (0 disables lookup).
	HeaderRow int

	NameColumn      string
	KeyColumn       string
	ExpansionColumn string

	NameIndex      int
	KeyIndex       int
	ExpansionIndex int
}

// DefaultSheetLayout returns the layout of the stock quest exports.
func DefaultSheetLayout() SheetLayout {
	return SheetLayout{
		SkipRows:        DefaultSkipRows,
		HeaderRow:       DefaultHeaderRow,
		NameColumn:      DefaultNameColumn,
		KeyColumn:       DefaultKeyColumn,
		ExpansionColumn: DefaultExpansionColumn,
		NameIndex:       DefaultNameIndex,
		KeyIndex:        DefaultKeyIndex,
		ExpansionIndex:  DefaultExpansionIndex,
	}
}

// Validate checks the layout for impossible values.
func (l SheetLayout) Validate() error {
	var errs []error
	if l.SkipRows < 0 {
		errs = append(errs, fmt.Errorf("skip_rows cannot be negative: %w", ErrInvalidConfig))
	}
	if l.HeaderRow < 0 || l.HeaderRow > l.SkipRows+1 {
		errs = append(errs, fmt.Errorf("header_row must be between 0 and %d: %w", l.SkipRows+1, ErrInvalidConfig))
	}
	if l.NameIndex < 0 || l.KeyIndex < 0 || l.ExpansionIndex < 0 {
		errs = append(errs, fmt.Errorf("column positions cannot be negative: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// ImportConfig contains all parameters needed for an import run.
// Connection details are not part of it: the store is supplied by a StoreFactory.
type ImportConfig struct {
	// EnglishPath and JapanesePath are the two source sheets.
	EnglishPath  string
	JapanesePath string

	// EnglishEncoding and JapaneseEncoding name the source text encodings
	// ("utf-8", "shift_jis", "euc-jp"). Empty means utf-8.
	EnglishEncoding  string
	JapaneseEncoding string

	Layout SheetLayout

	// TableName is the destination table, recreated on every run.
	TableName string

	// DryRun parses both sheets and reports without touching the database.
	DryRun bool

	// Timeout is the global timeout for the entire run. Verbosity is a
	// property of the logger handed to the importer.
	Timeout time.Duration
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// IsValidIdentifier reports whether name can be used unquoted as a table name.
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Validate checks if the ImportConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ImportConfig) Validate() error {
	var errs []error

	if c.EnglishPath == "" {
		errs = append(errs, fmt.Errorf("EnglishPath is required: %w", ErrInvalidConfig))
	}
	if c.JapanesePath == "" {
		errs = append(errs, fmt.Errorf("JapanesePath is required: %w", ErrInvalidConfig))
	}
	if !IsValidIdentifier(c.TableName) {
		errs = append(errs, fmt.Errorf("table name %q is not a plain SQL identifier: %w", c.TableName, ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// QuestStore is the destination of an import.
// A store holds exactly one database connection; it is not safe for concurrent use.
type QuestStore interface {
	// RecreateTable drops the quest table if present and creates it empty.
	RecreateTable(ctx context.Context) error

	// InsertEnglish inserts records with a NULL Japanese name in one transaction.
	InsertEnglish(ctx context.Context, records []QuestRecord) (int, error)

	// ApplyJapaneseNames updates quest_name_jp for every record whose table_name
	// matches, one statement per update, in one transaction.
	ApplyJapaneseNames(ctx context.Context, updates []NameUpdate) (UpdateResult, error)

	// Quests returns all records ordered by id.
	Quests(ctx context.Context) ([]QuestRecord, error)

	// Close releases the connection.
	Close() error
}

// StoreFactory opens a store for tableName. The caller must Close it.
type StoreFactory func(ctx context.Context, tableName string) (QuestStore, error)

// Importer runs the two-sheet quest import.
type Importer interface {
	Import(ctx context.Context, cfg ImportConfig) (*ImportReport, error)

	// Verify reports Japanese name coverage of an imported table.
	Verify(ctx context.Context, tableName string) (*Coverage, error)
}

// Phase identifies a step of an import run.
type Phase int

const (
	PhaseApproval Phase = iota
	PhaseSchema
	PhaseReadEnglish
	PhaseInsert
	PhaseReadJapanese
	PhaseUpdate
	PhaseDone
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhaseApproval:
		return "Awaiting approval"
	case PhaseSchema:
		return "Recreating table"
	case PhaseReadEnglish:
		return "Reading English sheet"
	case PhaseInsert:
		return "Inserting English quests"
	case PhaseReadJapanese:
		return "Reading Japanese sheet"
	case PhaseUpdate:
		return "Applying Japanese names"
	case PhaseDone:
		return "Done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ProgressReporter receives phase transitions during an import.
// Implementations must not block.
type ProgressReporter interface {
	Report(phase Phase, detail string)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID. With all three set, Service Principal authentication is
	// used; otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AWS RDS IAM authentication.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
