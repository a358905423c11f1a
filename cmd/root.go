package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Views storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds CLI configuration. Environment variables provide defaults
// and flags override them.
type Config struct {
	DBPath       string `env:"PIPELINE_DB"`
	PageSize     int    `env:"PIPELINE_PAGE_SIZE" envDefault:"20"`
	ViewsBackend string `env:"PIPELINE_VIEWS_BACKEND" envDefault:"sqlite"`
	ViewsFile    string `env:"PIPELINE_VIEWS_FILE"`
	PrefsPath    string `env:"PIPELINE_PREFS"`
	SeedDemo     bool   `env:"PIPELINE_SEED_DEMO"`
	ShowVersion  bool   `env:"-"`

	configDir string
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags(version string) (*Config, error) {
	// Load .env files first so env-based defaults work with existing flag parsing.
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	config, err := Load(os.Args[1:])
	if err != nil {
		return nil, err
	}
	if config.ShowVersion {
		fmt.Println("pipeline", version)
		return config, nil
	}

	settings, err := loadOnboardingSettings(config.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if shouldRunOnboarding(settings) {
		settings, err = runOnboarding(config.configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}
	config.SeedDemo = config.SeedDemo || settings.SeedDemo

	return config, nil
}

// Load builds the configuration from the environment and args.
func Load(args []string) (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.StringVar(&config.DBPath, "db", config.DBPath, "Path to SQLite database file (default: ~/.pipeline/pipeline.db)")
	fs.IntVar(&config.PageSize, "page-size", config.PageSize, "Rows revealed per page")
	fs.StringVar(&config.ViewsBackend, "views", config.ViewsBackend, "Saved views backend: sqlite, file or memory")
	fs.StringVar(&config.ViewsFile, "views-file", config.ViewsFile, "Path to the saved views JSON file (file backend)")
	fs.StringVar(&config.PrefsPath, "prefs", config.PrefsPath, "Path to UI preferences file")
	fs.BoolVar(&config.SeedDemo, "seed", config.SeedDemo, "Seed demo data into an empty database")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if config.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", config.PageSize)
	}
	switch config.ViewsBackend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown views backend %q", config.ViewsBackend)
	}

	// Set default DB path if not specified
	if config.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		config.configDir = filepath.Join(home, ".pipeline")
		if err := os.MkdirAll(config.configDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		config.DBPath = filepath.Join(config.configDir, "pipeline.db")
	} else {
		config.configDir = filepath.Dir(config.DBPath)
	}

	if config.ViewsFile == "" {
		config.ViewsFile = filepath.Join(config.configDir, "views.json")
	}
	if config.PrefsPath == "" {
		config.PrefsPath = filepath.Join(config.configDir, "ui_prefs.json")
	}

	return config, nil
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		value = strings.Trim(value, `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
