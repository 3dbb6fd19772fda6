package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/registry"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func useConfigHome(t *testing.T, dir string) {
	t.Helper()
	prev := xdg.ConfigHome
	xdg.ConfigHome = dir
	t.Cleanup(func() { xdg.ConfigHome = prev })
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Database)
	assert.Equal(t, "PLN", cfg.Currency)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 90, cfg.HorizonDays)
	assert.Equal(t, Layout{Buffer: 40, CellWidth: 8}, cfg.Layout)
	assert.Empty(t, cfg.Tables)
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesOverDefault(t *testing.T) {
	p := writeConfig(t, `
currency: EUR
layout:
  buffer: 16
tables:
  documents:
    columns:
      notes:
        hidden: true
      counterparty:
        priority: 3
        width: 160px
`)
	cfg, used, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, p, used)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 16, cfg.Layout.Buffer)
	assert.Equal(t, 8, cfg.Layout.CellWidth, "unset keys keep their default")
	assert.Equal(t, 90, cfg.HorizonDays)

	ov := cfg.Overrides()
	require.Contains(t, ov, registry.TableDocuments)
	assert.True(t, ov[registry.TableDocuments]["notes"].Hidden)
	require.NotNil(t, ov[registry.TableDocuments]["counterparty"].Priority)
	assert.Equal(t, 3, *ov[registry.TableDocuments]["counterparty"].Priority)
	assert.Equal(t, "160px", ov[registry.TableDocuments]["counterparty"].Width)
}

func TestLoadDiscovery(t *testing.T) {
	t.Run("no file uses embedded default", func(t *testing.T) {
		useConfigHome(t, t.TempDir())
		cfg, used, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "", used)
		assert.Equal(t, "PLN", cfg.Currency)
	})
	t.Run("xdg config file", func(t *testing.T) {
		home := t.TempDir()
		useConfigHome(t, home)
		p := filepath.Join(home, AppDir, FileName)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("horizonDays: 30\n"), 0o600))

		cfg, used, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, p, used)
		assert.Equal(t, 30, cfg.HorizonDays)
	})
	t.Run("explicit file wins", func(t *testing.T) {
		useConfigHome(t, t.TempDir())
		p := writeConfig(t, "horizonDays: 7\n")
		cfg, used, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, p, used)
		assert.Equal(t, 7, cfg.HorizonDays)
	})
	t.Run("explicit file missing", func(t *testing.T) {
		_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		validation bool
		msg        string
	}{
		{name: "unknown key", body: "colour: red\n", msg: "colour"},
		{name: "bad yaml", body: "currency: [\n", msg: "decode"},
		{name: "bad currency", body: "currency: XXXX\n", validation: true, msg: "currency"},
		{name: "bad locale", body: "locale: \"!!\"\n", validation: true, msg: "locale"},
		{name: "negative horizon", body: "horizonDays: -1\n", validation: true, msg: "horizonDays"},
		{name: "negative buffer", body: "layout:\n  buffer: -5\n", validation: true, msg: "layout.buffer"},
		{name: "unknown table", body: "tables:\n  invoices: {}\n", validation: true, msg: "tables.invoices"},
		{
			name:       "bad align",
			body:       "tables:\n  documents:\n    columns:\n      title:\n        align: justify\n",
			validation: true,
			msg:        "align",
		},
		{
			name:       "negative priority",
			body:       "tables:\n  payments:\n    columns:\n      amount:\n        priority: -1\n",
			validation: true,
			msg:        "priority",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, tt.validation, errors.Is(err, ledger.ErrValidation))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Config{Database: "/tmp/books.db"}
	p, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/books.db", p)

	data := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_DATA_HOME", data)
	xdg.Reload()

	p, err = Config{}.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, AppDir, DatabaseFile), p)
	assert.DirExists(t, filepath.Join(data, AppDir))
}

func TestMarshal(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	out, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "currency: PLN")
	assert.Contains(t, string(out), "cellWidth: 8")

	var back Config
	require.NoError(t, decode(out, &back))
	assert.Equal(t, cfg.Layout, back.Layout)
}

func TestDefaultYAMLIsCopy(t *testing.T) {
	a := DefaultYAML()
	a[0] = 'X'
	assert.NotEqual(t, a[0], DefaultYAML()[0])
}
