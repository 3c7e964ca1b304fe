package engine

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/config"
	"github.com/spaghettifunk/propengine/engine/core"
)

type ApplicationConfig struct {
	// Path of the TOML file the configuration came from. Empty when running
	// on defaults, in which case nothing is hot reloaded.
	Path string
	*config.Config
}

// LoadApplicationConfig reads path, or returns the defaults when path is empty.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	if path == "" {
		return &ApplicationConfig{Config: config.Default()}, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config path %q", path)
	}
	cfg, err := config.Load(abs)
	if err != nil {
		return nil, err
	}
	return &ApplicationConfig{Path: abs, Config: cfg}, nil
}

// BaseDir is the directory relative asset paths resolve against.
func (a *ApplicationConfig) BaseDir() string {
	if a.Path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return filepath.Dir(a.Path)
}

// configureLogging applies the logging section. The returned file, if any,
// must be closed at shutdown.
func (a *ApplicationConfig) configureLogging() (*os.File, error) {
	if a.Logging.Level != "" {
		if err := core.SetLogLevel(a.Logging.Level); err != nil {
			return nil, errors.Wrapf(err, "log level %q", a.Logging.Level)
		}
	}
	if a.Logging.File == "" {
		return nil, nil
	}
	p := a.Logging.File
	if !filepath.IsAbs(p) {
		p = filepath.Join(a.BaseDir(), p)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	core.SetLogOutput(f)
	return f, nil
}
