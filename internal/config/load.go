package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/internal/registry"
	"github.com/oakwood-commons/cashbook/pkg/columns"
)

const (
	// AppDir names the application directory under the XDG base directories.
	AppDir = "cashbook"
	// FileName is the configuration file looked up in the XDG config directory.
	FileName = "config.yaml"
	// DatabaseFile is the default database name under the XDG data directory.
	DatabaseFile = "cashbook.db"
)

//go:embed default_config.yaml
var embeddedDefault []byte

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefault...)
}

// Default decodes the embedded default configuration.
func Default() (Config, error) {
	var cfg Config
	if err := decode(embeddedDefault, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Discover returns the configuration file to read: explicit when set,
// otherwise the XDG config file when it exists. An empty result means only
// the embedded default applies.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	p := filepath.Join(xdg.ConfigHome, AppDir, FileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", p, err)
	}
	return p, nil
}

// Load merges the discovered configuration file over the embedded default
// and validates the result. It returns the path that was read, if any.
func Load(explicit string) (Config, string, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, "", err
	}
	path, err := Discover(explicit)
	if err != nil {
		return Config{}, "", err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, path, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, path, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// decode overlays data onto cfg; keys absent from data keep their value.
func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Currency != "" {
		if err := ledger.ValidateCurrency(c.Currency); err != nil {
			errs = append(errs, fmt.Errorf("currency: %w", err))
		}
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
		}
	}
	if c.HorizonDays < 0 {
		errs = append(errs, fmt.Errorf("horizonDays must be non-negative, got %d", c.HorizonDays))
	}
	if c.Layout.Buffer < 0 {
		errs = append(errs, fmt.Errorf("layout.buffer must be non-negative, got %d", c.Layout.Buffer))
	}
	if c.Layout.CellWidth < 0 {
		errs = append(errs, fmt.Errorf("layout.cellWidth must be non-negative, got %d", c.Layout.CellWidth))
	}
	for table, tc := range c.Tables {
		if !slices.Contains(registry.Tables, table) {
			errs = append(errs, fmt.Errorf("tables.%s: unknown table", table))
			continue
		}
		for id, o := range tc.Columns {
			if o.Priority != nil && *o.Priority < 0 {
				errs = append(errs, fmt.Errorf("tables.%s.columns.%s.priority must be non-negative", table, id))
			}
			switch columns.Align(o.Align) {
			case "", columns.AlignLeft, columns.AlignRight, columns.AlignCenter:
			default:
				errs = append(errs, fmt.Errorf("tables.%s.columns.%s.align %q: want left, right or center", table, id, o.Align))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: config: %w", ledger.ErrValidation, errors.Join(errs...))
	}
	return nil
}

// DatabasePath resolves the database file, creating the XDG data directory
// when the default is used.
func (c Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	p, err := xdg.DataFile(filepath.Join(AppDir, DatabaseFile))
	if err != nil {
		return "", fmt.Errorf("resolve database path: %w", err)
	}
	return p, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
