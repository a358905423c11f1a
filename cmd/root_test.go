package cmd

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvDefaultsAndFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PIPELINE_DB", filepath.Join(dir, "env.db"))
	t.Setenv("PIPELINE_PAGE_SIZE", "50")
	t.Setenv("PIPELINE_VIEWS_BACKEND", "file")

	config, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "env.db"), config.DBPath)
	require.Equal(t, 50, config.PageSize)
	require.Equal(t, BackendFile, config.ViewsBackend)
	require.Equal(t, filepath.Join(dir, "views.json"), config.ViewsFile)
	require.Equal(t, filepath.Join(dir, "ui_prefs.json"), config.PrefsPath)

	config, err = Load([]string{"-page-size", "10", "-views", "memory", "-seed"})
	require.NoError(t, err)
	require.Equal(t, 10, config.PageSize)
	require.Equal(t, BackendMemory, config.ViewsBackend)
	require.True(t, config.SeedDemo)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PIPELINE_DB", "")

	config, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, 20, config.PageSize)
	require.Equal(t, BackendSQLite, config.ViewsBackend)
	require.Equal(t, "pipeline.db", filepath.Base(config.DBPath))
	require.DirExists(t, filepath.Dir(config.DBPath))
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("PIPELINE_DB", filepath.Join(t.TempDir(), "p.db"))

	_, err := Load([]string{"-page-size", "0"})
	require.Error(t, err)

	_, err = Load([]string{"-views", "redis"})
	require.Error(t, err)

	t.Setenv("PIPELINE_PAGE_SIZE", "many")
	_, err = Load(nil)
	require.Error(t, err)
}

func TestLoadDotEnv_KeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nPIPELINE_TEST_A=\"from file\"\nPIPELINE_TEST_B=file\nnot a pair\n"), 0600))
	t.Setenv("PIPELINE_TEST_A", "")
	t.Setenv("PIPELINE_TEST_B", "set")

	loadDotEnv(path)
	require.Equal(t, "from file", os.Getenv("PIPELINE_TEST_A"))
	require.Equal(t, "set", os.Getenv("PIPELINE_TEST_B"))
}

func TestOnboarding_SettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	settings, err := loadOnboardingSettings(dir)
	require.NoError(t, err)
	require.False(t, settings.Completed)

	m, _ := newOnboardingModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	final := m.(onboardingModel)
	require.Equal(t, stepDone, final.step)
	require.True(t, final.settings.Completed)
	require.False(t, final.settings.SeedDemo)

	require.NoError(t, saveOnboardingSettings(dir, final.settings))
	settings, err = loadOnboardingSettings(dir)
	require.NoError(t, err)
	require.Equal(t, final.settings, settings)
	require.False(t, shouldRunOnboarding(settings))
}
