package questload_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/questload/pkg/questload"
)

func validImportConfig() questload.ImportConfig {
	return questload.ImportConfig{
		EnglishPath:  "rsrc/csv/eng/Quest.csv",
		JapanesePath: "rsrc/csv/jp/Quest.csv",
		Layout:       questload.DefaultSheetLayout(),
		TableName:    questload.DefaultTableName,
		Timeout:      time.Minute,
	}
}

func TestImportConfig_Validate_Valid(t *testing.T) {
	cfg := validImportConfig()
	require.NoError(t, cfg.Validate())
}

func TestImportConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := questload.ImportConfig{
		TableName: "Quest; DROP TABLE x",
		Timeout:   -time.Second,
		Layout:    questload.SheetLayout{SkipRows: -1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, questload.ErrInvalidConfig))

	msg := err.Error()
	assert.Contains(t, msg, "EnglishPath is required")
	assert.Contains(t, msg, "JapanesePath is required")
	assert.Contains(t, msg, "not a plain SQL identifier")
	assert.Contains(t, msg, "timeout cannot be negative")
	assert.Contains(t, msg, "skip_rows cannot be negative")
}

func TestSheetLayout_Validate_HeaderRowBounds(t *testing.T) {
	tests := []struct {
		name      string
		headerRow int
		wantErr   bool
	}{
		{"disabled", 0, false},
		{"index line", 1, false},
		{"names line", 2, false},
		{"type line", 3, false},
		{"data line", 4, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := questload.DefaultSheetLayout()
			layout.HeaderRow = tt.headerRow
			err := layout.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, questload.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Quest", true},
		{"quest_2024", true},
		{"_staging", true},
		{"", false},
		{"2quest", false},
		{"quest-table", false},
		{"Quest\"", false},
		{"public.Quest", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, questload.IsValidIdentifier(tt.name))
		})
	}
}

func TestAuthMethod_String(t *testing.T) {
	assert.Equal(t, "Standard", questload.AuthMethodStandard.String())
	assert.Equal(t, "AWS IAM", questload.AuthMethodAWSIAM.String())
	assert.Equal(t, "Google IAM", questload.AuthMethodGoogleIAM.String())
	assert.Equal(t, "Azure Entra ID", questload.AuthMethodAzureEntraID.String())
	assert.Equal(t, "Unknown(42)", questload.AuthMethod(42).String())
	assert.False(t, questload.AuthMethod(42).IsValid())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "Recreating table", questload.PhaseSchema.String())
	assert.Equal(t, "Applying Japanese names", questload.PhaseUpdate.String())
	assert.Equal(t, "Phase(99)", questload.Phase(99).String())
}

func TestUpdateResult_Add(t *testing.T) {
	var r questload.UpdateResult
	r.Add(1)
	r.Add(0)
	r.Add(3)

	assert.Equal(t, 2, r.Applied)
	assert.Equal(t, 1, r.Unmatched)
	assert.Equal(t, int64(4), r.RowsAffected)
}
