// Locates configuration files in the per-user configuration directory.
package directory

import (
	"os/user"
	"path/filepath"

	"github.com/kirsle/configdir"
	"github.com/mitchellh/go-homedir"
)

// Returns the absolute path to a specific folder within the
// system default configuration directory for the current user.
//
// On Linux systems, this generally means ~/.config/<app>/<namespace>
func GetConfigDir(app string, namespaces ...string) (string, error) {
	paths := append([]string{app}, namespaces...)
	dir := configdir.LocalConfig(paths...)
	if !filepath.IsAbs(dir) {
		user, err := user.Current()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(user.HomeDir, dir)
	}

	return dir, nil
}

// GetConfigFile returns the path of the named file in the configuration
// directory of app, see GetConfigDir.
//
// The file is not required to exist.
func GetConfigFile(app string, name string) (string, error) {
	dir, err := GetConfigDir(app)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Expand replaces a leading ~ in path with the home directory of the user.
func Expand(path string) (string, error) {
	return homedir.Expand(path)
}

// Refresh values cached by GetConfigDir and Expand.
//
// Don't bother calling Refresh() unless your project mingles with the HOME
// environment variable, or variables like XDG_CONFIG_HOME.
func Refresh() {
	configdir.Refresh()
	homedir.Reset()
}
