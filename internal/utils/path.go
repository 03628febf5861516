package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// AppName names the per user config and data directories.
const AppName = "tapdict"

// DefaultDictionary is the file looked up when no dictionary is given.
const DefaultDictionary = "words.dict"

// PathResolver locates dictionary files relative to the binary, the working
// directory and the user config directory.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

func NewPathResolver() (*PathResolver, error) {
	execDir, err := GetExecutableDir()
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: execDir,
		homeDir:       homeDir,
		configDir:     ConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", execDir, pr.configDir)
	return pr, nil
}

// ConfigDir returns the platform config directory under homeDir.
func ConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, ".config", AppName)
	}
}

// ConfigPath returns filename inside the config directory.
func (pr *PathResolver) ConfigPath(filename string) string {
	return filepath.Join(pr.configDir, filename)
}

// Candidates lists where FindDictionary looks for name, in order.
func (pr *PathResolver) Candidates(name string) []string {
	if name == "" {
		name = DefaultDictionary
	}
	if filepath.IsAbs(name) {
		return []string{name}
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, name))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, name),
		filepath.Join(pr.executableDir, "data", name),
		filepath.Join(filepath.Dir(pr.executableDir), "data", name),
		filepath.Join(pr.configDir, "data", name),
	)
	return candidates
}

// FindDictionary returns the first regular file among Candidates(name).
func (pr *PathResolver) FindDictionary(name string) (string, error) {
	candidates := pr.Candidates(name)
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			log.Debugf("Found dictionary: %s", path)
			return path, nil
		}
		log.Debugf("Dictionary candidate not found: %s", path)
	}
	return "", fmt.Errorf("dictionary %q not found in %s: %w",
		name, strings.Join(candidates, ", "), os.ErrNotExist)
}

// GetRuntimeInfo returns debug information about the process environment.
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"executable_dir": pr.executableDir,
		"current_dir":    cwd,
		"config_dir":     pr.configDir,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"go":             runtime.Version(),
	}
	for _, env := range []string{"HOME", "XDG_CONFIG_HOME", "APPDATA"} {
		if value := os.Getenv(env); value != "" {
			info["env_"+strings.ToLower(env)] = value
		}
	}
	return info
}
