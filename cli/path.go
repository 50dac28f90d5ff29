package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/blockcfg/config"
	"github.com/ardnew/blockcfg/pkg"
)

// baseConfig is the base name of the settings file.
const baseConfig = "config"

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the per-user configuration
// directory with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cacheDir returns the per-user cache directory.
func cacheDir() string { return pkg.CacheDir() }

// settingsSearch describes where settings files are looked up: the entries of
// <IDENT>_CONFIG_PATH, the per-user configuration directory, then the
// installation prefix.
func settingsSearch() config.Search {
	return config.Search{
		App:       pkg.Ident(),
		Version:   pkg.Version,
		Prefix:    pkg.InstallPrefix(),
		ConfigDir: filepath.Dir(pkg.ConfigDir()),
	}
}

// settingsFiles returns every settings file found, least preferred first, so
// that resolvers added later take precedence.
func settingsFiles() []string {
	files := settingsSearch().Files(baseConfig)

	for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
		files[i], files[j] = files[j], files[i]
	}

	return files
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
