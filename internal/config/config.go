// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/romstackapp/romstack/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Library  LibraryConfig
	Output   OutputConfig
	Organize OrganizeConfig
	Rename   RenameConfig
	Dedup    DedupConfig
	Store    StoreConfig
	Search   SearchConfig
	Watch    WatchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	LogLevel  string `name:"log-level" validate:"required,oneof=debug info warn error"`
	LogFormat string `name:"log-format" validate:"required,oneof=pretty json"`
}

// LibraryConfig holds ROM library configuration.
type LibraryConfig struct {
	// Root is the directory the collection is scanned from.
	Root string `name:"root"`
	// Extensions lists the file suffixes treated as ROMs.
	Extensions []string `name:"ext" validate:"min=1,dive,startswith=."`
	// CatalogPath points at a specific gamelist file. When empty the
	// catalog directory is searched for *.xml instead.
	CatalogPath string `name:"catalog"`
	CatalogDir  string `name:"catalog-dir"`
}

// OutputConfig holds destination-side configuration.
type OutputConfig struct {
	Dir string `name:"out" validate:"required"`
	// SanitizeNames strips characters that are unsafe in path components.
	SanitizeNames bool `name:"sanitize"`
	// TrimLength truncates destination filenames, preserving the
	// extension. Zero disables trimming.
	TrimLength int `name:"trim" validate:"gte=0"`
}

// OrganizeConfig holds options for the organize commands.
type OrganizeConfig struct {
	// Workers is the matching worker count. Zero selects the default
	// of min(8, CPUs), clamped to 1..16.
	Workers int `name:"workers" validate:"gte=0,lte=16"`
	// MaxFilesPerFolder splits alphabetical folders that grow beyond
	// this many entries. EverDrive firmware caps directory listings at 255.
	MaxFilesPerFolder int `name:"max-per-folder" validate:"gte=1"`
	// LetterTrimLength is the filename cap used by the alphabetical
	// organizer. The EverDrive display truncates past 32 characters.
	LetterTrimLength int  `name:"letter-trim" validate:"gte=0"`
	Debug            bool `name:"debug"`
	AssumeYes        bool `name:"yes"`
}

// RenameConfig holds options for the rename command.
type RenameConfig struct {
	Convention string `name:"convention" validate:"required,oneof=no_tags standard custom"`
	Template   string `name:"template"`
	Apply      bool   `name:"apply"`
}

// DedupConfig holds duplicate-detection configuration.
type DedupConfig struct {
	Algorithm      string `name:"algo" validate:"required,oneof=sha1 md5 sha256 blake2b"`
	MoveDuplicates bool   `name:"move-dupes"`
}

// StoreConfig holds collection database configuration.
type StoreConfig struct {
	DatabasePath string `name:"db" validate:"required"`
}

// SearchConfig holds search index configuration.
type SearchConfig struct {
	IndexPath string `name:"index" validate:"required"`
}

// WatchConfig holds watch-mode configuration.
type WatchConfig struct {
	// SettleDelay is how long a path must stay quiet before a change
	// batch is emitted.
	SettleDelay time.Duration `name:"settle"`
}

// defaultExtensions covers the common cartridge, disc, and archive
// formats a mixed collection carries.
var defaultExtensions = []string{
	".zip", ".7z",
	".iso", ".cue", ".bin", ".img",
	".rom", ".smc", ".sfc",
	".nes", ".fds", ".nsf",
	".gb", ".gbc", ".gba",
	".n64", ".z64", ".v64",
	".md", ".smd", ".gen",
	".32x", ".sms", ".gg",
	".pce", ".sgx",
	".lnx", ".ngp", ".ngc",
	".ws", ".wsc",
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables (ROMSTACK_*).
// 3. .env file.
// 4. Default values (lowest priority).
//
// args are the command-line arguments after the subcommand name.
// Remaining positional arguments are returned for the caller.
func LoadConfig(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("romstack", flag.ContinueOnError)

	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (pretty, json)")

	root := fs.String("root", "", "ROM collection root directory")
	extensions := fs.String("ext", "", "Comma-separated ROM extensions (e.g. .nes,.sfc)")
	catalogPath := fs.String("catalog", "", "Path to a gamelist XML file")
	catalogDir := fs.String("catalog-dir", "", "Directory searched for gamelist XML files (default: current directory)")

	outDir := fs.String("out", "", "Output directory for organized files (default: organized_roms)")
	sanitize := fs.String("sanitize", "", "Sanitize destination names (default: true)")
	trim := fs.String("trim", "", "Max destination filename length, 0 disables (default: 0)")

	workers := fs.String("workers", "", "Matching worker count, 0 = auto (default: 0)")
	maxPerFolder := fs.String("max-per-folder", "", "Max files per letter folder (default: 255)")
	letterTrim := fs.String("letter-trim", "", "Filename cap for alphabetical mode, 0 disables (default: 32)")
	debug := fs.Bool("debug", false, "Verbose match tracing for the first batch")
	yes := fs.Bool("yes", false, "Never prompt; take defaults")

	convention := fs.String("convention", "", "Naming convention (no_tags, standard, custom)")
	template := fs.String("template", "", "Custom naming template (default: {name} [{region}])")
	apply := fs.Bool("apply", false, "Apply renames instead of previewing")

	algo := fs.String("algo", "", "Hash algorithm (sha1, md5, sha256, blake2b)")
	moveDupes := fs.String("move-dupes", "", "Move duplicates under the output directory (default: false)")

	dbPath := fs.String("db", "", "Collection database path (default: rom_collection.db)")
	indexPath := fs.String("index", "", "Search index path (default: rom_index.bleve)")

	settle := fs.String("settle", "", "Watch settle delay (default: 2s)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			LogLevel:  strings.ToLower(getConfigValue(*logLevel, "ROMSTACK_LOG_LEVEL", "info")),
			LogFormat: strings.ToLower(getConfigValue(*logFormat, "ROMSTACK_LOG_FORMAT", "pretty")),
		},
		Library: LibraryConfig{
			Root:        getConfigValue(*root, "ROMSTACK_ROOT", ""),
			Extensions:  splitExtensions(getConfigValue(*extensions, "ROMSTACK_EXTENSIONS", "")),
			CatalogPath: getConfigValue(*catalogPath, "ROMSTACK_CATALOG", ""),
			CatalogDir:  getConfigValue(*catalogDir, "ROMSTACK_CATALOG_DIR", "."),
		},
		Output: OutputConfig{
			Dir:           getConfigValue(*outDir, "ROMSTACK_OUT", "organized_roms"),
			SanitizeNames: getBoolConfigValue(*sanitize, "ROMSTACK_SANITIZE", true),
			TrimLength:    getIntConfigValue(*trim, "ROMSTACK_TRIM", 0),
		},
		Organize: OrganizeConfig{
			Workers:           getIntConfigValue(*workers, "ROMSTACK_WORKERS", 0),
			MaxFilesPerFolder: getIntConfigValue(*maxPerFolder, "ROMSTACK_MAX_PER_FOLDER", 255),
			LetterTrimLength:  getIntConfigValue(*letterTrim, "ROMSTACK_LETTER_TRIM", 32),
			Debug:             *debug || envSet("ROMSTACK_DEBUG"),
			AssumeYes:         *yes || envSet("ROMSTACK_YES"),
		},
		Rename: RenameConfig{
			Convention: getConfigValue(*convention, "ROMSTACK_CONVENTION", "no_tags"),
			Template:   getConfigValue(*template, "ROMSTACK_TEMPLATE", "{name} [{region}]"),
			Apply:      *apply,
		},
		Dedup: DedupConfig{
			Algorithm:      strings.ToLower(getConfigValue(*algo, "ROMSTACK_HASH_ALGO", "sha1")),
			MoveDuplicates: getBoolConfigValue(*moveDupes, "ROMSTACK_MOVE_DUPES", false),
		},
		Store: StoreConfig{
			DatabasePath: getConfigValue(*dbPath, "ROMSTACK_DB", "rom_collection.db"),
		},
		Search: SearchConfig{
			IndexPath: getConfigValue(*indexPath, "ROMSTACK_INDEX", "rom_index.bleve"),
		},
	}

	if len(cfg.Library.Extensions) == 0 {
		cfg.Library.Extensions = defaultExtensions
	}

	// Parse watch settle delay.
	settleStr := getConfigValue(*settle, "ROMSTACK_SETTLE", "2s")
	settleDuration, err := time.ParseDuration(settleStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid settle delay %q: %w", settleStr, err)
	}
	cfg.Watch.SettleDelay = settleDuration

	// Expand paths that were given.
	if err := cfg.expandPaths(); err != nil {
		return nil, nil, err
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	return validation.New().Validate(c)
}

// expandPaths expands ~ and makes configured paths absolute.
func (c *Config) expandPaths() error {
	var err error
	if c.Library.Root != "" {
		if c.Library.Root, err = expandPath(c.Library.Root, ""); err != nil {
			return fmt.Errorf("invalid root: %w", err)
		}
	}
	if c.Library.CatalogPath != "" {
		if c.Library.CatalogPath, err = expandPath(c.Library.CatalogPath, ""); err != nil {
			return fmt.Errorf("invalid catalog path: %w", err)
		}
	}
	if c.Library.CatalogDir, err = expandPath(c.Library.CatalogDir, "."); err != nil {
		return fmt.Errorf("invalid catalog dir: %w", err)
	}
	if c.Output.Dir, err = expandPath(c.Output.Dir, ""); err != nil {
		return fmt.Errorf("invalid output dir: %w", err)
	}
	if c.Store.DatabasePath, err = expandPath(c.Store.DatabasePath, ""); err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	if c.Search.IndexPath, err = expandPath(c.Search.IndexPath, ""); err != nil {
		return fmt.Errorf("invalid index path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		path = defaultPath
		if path == "" {
			return "", nil
		}
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// splitExtensions parses a comma-separated extension list, normalizing
// entries to lowercase with a leading dot.
func splitExtensions(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		exts = append(exts, p)
	}
	return exts
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// envSet reports whether an environment toggle is truthy.
func envSet(envKey string) bool {
	v := strings.ToLower(os.Getenv(envKey))
	return v == "true" || v == "1" || v == "yes"
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
