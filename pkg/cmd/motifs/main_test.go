package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	value := map[string]int{"pattern": 6}

	jsonPath := filepath.Join(dir, "out.json")
	require.NoError(t, export(jsonPath, value))
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded map[string]int
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, value, decoded)

	yamlPath := filepath.Join(dir, "out.yml")
	require.NoError(t, export(yamlPath, value))
	raw, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	assert.Equal(t, value, decoded)

	assert.Error(t, export(filepath.Join(dir, "missing", "out.json"), value))
}

func TestFlagsBindToConfig(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("size", "4"))
	require.NoError(t, rootCmd.PersistentFlags().Set("degree", "2.5"))
	t.Cleanup(func() {
		rootCmd.PersistentFlags().Set("size", "3")
		rootCmd.PersistentFlags().Set("degree", "10")
	})

	assert.Equal(t, 4, cfg.MotifSize())
	assert.Equal(t, 2.5, cfg.Degree())
}

func TestPatternCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"pattern", "25", "--size", "3"})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"pattern", "64", "--size", "3"})
	assert.Error(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"find", "not-a-group"})
	assert.Error(t, rootCmd.Execute())
}
