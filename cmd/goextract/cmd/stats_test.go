package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deftunes/goextract/internal/extractor"
)

func TestStatsCommandStructure(t *testing.T) {
	assert.NotNil(t, statsCmd)
	assert.Equal(t, "stats [table]", statsCmd.Use)
	assert.NotEmpty(t, statsCmd.Short)
	assert.NotEmpty(t, statsCmd.Long)
	assert.NotNil(t, statsCmd.RunE)
}

func TestStatsCommandArgs(t *testing.T) {
	assert.NoError(t, statsCmd.Args(statsCmd, []string{}))
	assert.NoError(t, statsCmd.Args(statsCmd, []string{"deftunes.songs"}))
	assert.Error(t, statsCmd.Args(statsCmd, []string{"a", "b"}))
}

func TestStatsIsAddedToRoot(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "stats" {
			found = true
			break
		}
	}
	assert.True(t, found, "stats command should be added to root command")
}

func TestRunStatsUnreachableDatabase(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	cfgFile = writeTestConfig(t, "http://localhost:8000", 1)

	err := runStats(statsCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to inspect table")
}

func TestPrintColumnsAlignment(t *testing.T) {
	cols := []extractor.ColumnInfo{
		{Name: "song_id", DataType: "character varying", Nullable: false},
		{Name: "artist_hotttnesss", DataType: "double precision", Nullable: true},
		{Name: "year", DataType: "integer", Nullable: true},
	}

	var buf bytes.Buffer
	statsCmd.SetOut(&buf)
	printColumns(statsCmd, cols)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "TYPE")
	assert.Contains(t, lines[0], "NULLABLE")

	// Every nullable cell starts at the same column as the header.
	idx := strings.Index(lines[0], "NULLABLE")
	require.Greater(t, idx, 0)
	assert.Equal(t, "no", lines[1][idx:])
	assert.Equal(t, "yes", lines[2][idx:])
	assert.Equal(t, "yes", lines[3][idx:])
}
