package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"run", "score", "serve", "lists", "runs"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "hpfinder", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRunCommand_Flags(t *testing.T) {
	for _, name := range []string{"input", "output", "limit", "concurrency", "store"} {
		require.NotNil(t, runCmd.Flags().Lookup(name), "run command should have --%s flag", name)
	}
	assert.Equal(t, "0", runCmd.Flags().Lookup("limit").DefValue)
}

func TestScoreCommand_Flags(t *testing.T) {
	require.NotNil(t, scoreCmd.Flags().Lookup("company"))
	require.NotNil(t, scoreCmd.Flags().Lookup("hits"))
	assert.Equal(t, "table", scoreCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "basic", scoreCmd.Flags().Lookup("query").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestListsCommand_HasDump(t *testing.T) {
	var found bool
	for _, c := range listsCmd.Commands() {
		found = found || c.Name() == "dump"
	}
	assert.True(t, found)
}
