package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cruciblehq/echod/internal"
)

const (

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files.
//
//	Linux:   $XDG_RUNTIME_DIR/echod or ~/.cache/echod/run
//	macOS:   ~/Library/Caches/echod/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, internal.Name)
	}
	return filepath.Join(xdg.CacheHome, internal.Name, "run")
}

// Path to the PID file written while the daemon runs.
//
//	Linux:   $XDG_RUNTIME_DIR/echod/echod.pid
//	macOS:   ~/Library/Caches/echod/run/echod.pid
func PIDFile() string {
	return filepath.Join(Runtime(), internal.Name+".pid")
}

// Path to the optional JSON configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/echod/config.json
//	macOS:   ~/Library/Application Support/echod/config.json
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, internal.Name, "config.json")
}
