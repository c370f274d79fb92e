package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations: everything is
// resolved relative to the executable directory, never the working
// directory, so the tool behaves the same wherever it is launched from.
//
// Layout:
//
//	<exe dir>/
//	  ├── access_key.txt     (rates API credential)
//	  ├── data/
//	  │   ├── reports/       (generated gdps_<currency>.* files)
//	  │   └── cache/         (raw table snapshots)
//	  └── logs/
type Paths struct {
	ExecutableDir   string
	DataDir         string
	ReportsDir      string
	CacheDir        string
	LogsDir         string
	CredentialsFile string
}

// GetPaths returns the application paths relative to the executable
// location. GDPETL_HOME overrides the base directory, which tests use to
// point the layout at a temp dir.
func GetPaths() (*Paths, error) {
	baseDir := os.Getenv("GDPETL_HOME")
	if baseDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		baseDir = filepath.Dir(exe)
	}

	dataDir := filepath.Join(baseDir, "data")
	return &Paths{
		ExecutableDir:   baseDir,
		DataDir:         dataDir,
		ReportsDir:      filepath.Join(dataDir, "reports"),
		CacheDir:        filepath.Join(dataDir, "cache"),
		LogsDir:         filepath.Join(baseDir, "logs"),
		CredentialsFile: filepath.Join(baseDir, "access_key.txt"),
	}, nil
}

// EnsureDirectories creates every directory the pipeline writes into.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.ReportsDir, p.CacheDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a generated report file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetCachePath returns the full path for a cached intermediate file.
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetLogPath returns the full path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
