package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// PathResolver locates docserve.toml and the data files it names.
//
// Config lives in the per-user docserve directory (see ConfigDirFor). Relative
// data paths from the config, such as tags.file and mdn.index, are looked up next
// to the working dir, next to the binary, then in the data/ folder of that directory.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver resolves the running binary and the per-user config directory.
// A missing home directory falls back to the temp dir with a warning.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	execDir := filepath.Dir(execPath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  execDir,
		homeDir:        homeDir,
		configDir:      ConfigDirFor(runtime.GOOS, homeDir, os.Getenv),
	}
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

// ConfigDirFor returns the directory holding docserve.toml on goos:
// $XDG_CONFIG_HOME/docserve or ~/.config/docserve on linux and darwin,
// %APPDATA%\docserve on windows and ~/.docserve elsewhere.
func ConfigDirFor(goos, homeDir string, getenv func(string) string) string {
	switch goos {
	case "darwin":
		return filepath.Join(homeDir, ".config", "docserve")
	case "linux":
		if configHome := getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "docserve")
		}
		return filepath.Join(homeDir, ".config", "docserve")
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "docserve")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "docserve")
	default:
		return filepath.Join(homeDir, ".docserve")
	}
}

// ResolveDataFile maps a tags.file or mdn.index setting to a path. Absolute
// names are returned as is. Relative names try the working dir, the binary's
// dir and DataDir in that order; when none exists the working-dir path is
// returned so the load error names it.
func (pr *PathResolver) ResolveDataFile(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, name))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, name),
		filepath.Join(pr.DataDir(), name),
	)
	for _, path := range candidates {
		if FileExists(path) {
			log.Debugf("Found data file: %s", path)
			return path
		}
		log.Debugf("Data file candidate not found: %s", path)
	}
	return candidates[0]
}

// GetConfigPath returns where docserve.toml (filename) is read and written.
// When the config dir cannot be created or written, it falls back to
// ~/.docserve, then a docserve folder in the temp dir, then the binary's dir.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	configPath := filepath.Join(pr.configDir, filename)
	if ensureWritableDir(pr.configDir) {
		return configPath, nil
	}

	fallbackDirs := []string{
		filepath.Join(pr.homeDir, ".docserve"),
		filepath.Join(os.TempDir(), "docserve"),
		pr.executableDir,
	}
	for _, dir := range fallbackDirs {
		if ensureWritableDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("Using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}

// ConfigDir returns the directory GetConfigPath prefers.
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// DataDir is the last place ResolveDataFile looks for tag files and MDN indexes.
func (pr *PathResolver) DataDir() string {
	return filepath.Join(pr.configDir, "data")
}

// RuntimeInfo lists the paths and env vars that decide where docserve looks
// for its files. The config command prints it at debug level.
func (pr *PathResolver) RuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"config_dir":      pr.configDir,
		"data_dir":        pr.DataDir(),
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}
	for _, envVar := range []string{"XDG_CONFIG_HOME", "APPDATA"} {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
