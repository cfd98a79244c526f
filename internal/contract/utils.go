package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultCacheDirName is the per-repository directory holding the sqlite cache.
const DefaultCacheDirName = ".gmap"

// DefaultCacheFileName is the sqlite cache file inside the cache directory.
const DefaultCacheFileName = "cache.db"

// logger is shared by the CLI helpers below and handed to components that log.
var logger = NewLogger(os.Stderr, logrus.WarnLevel)

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableLevelTruncation: true})
	return l
}

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	return logger
}

// SetLogLevel parses level (panic, fatal, error, warn, info, debug, trace) and applies it.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.WithError(err).Fatal(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logger.WithError(err).Warn(msg)
}

// SelectOutputFile returns the file to write output to, or os.Stdout when filePath is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the sqlite cache file for a repository.
// cacheDir overrides the default <repoRoot>/.gmap directory.
func GetCacheDBFilePath(repoRoot, cacheDir string) string {
	dir := cacheDir
	if dir == "" {
		dir = filepath.Join(repoRoot, DefaultCacheDirName)
	}
	return filepath.Join(dir, DefaultCacheFileName)
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for "..." and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
