package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/snowdash/schema"
)

// Color variables for console output.
var (
	RedColor    = color.New(color.FgRed, color.Bold)   // critical severity, grade F, regressions
	OrangeColor = color.New(color.FgHiRed)             // high severity, grade D
	YellowColor = color.New(color.FgYellow)            // medium severity, grade C
	BlueColor   = color.New(color.FgBlue)              // low severity, grade B
	GreenColor  = color.New(color.FgGreen, color.Bold) // grade A, improvements
	GrayColor   = color.New(color.FgHiBlack)           // normal days, unknown values
)

var terminalColors = map[schema.Color]*color.Color{
	schema.Red:    RedColor,
	schema.Orange: OrangeColor,
	schema.Yellow: YellowColor,
	schema.Blue:   BlueColor,
	schema.Green:  GreenColor,
	schema.Gray:   GrayColor,
}

// GetColorLabel renders text in the terminal color of the token.
// Unknown tokens and disabled colors return the text unchanged.
func GetColorLabel(token schema.Color, text string, enabled bool) string {
	if !enabled {
		return text
	}
	c, ok := terminalColors[token]
	if !ok {
		return text
	}
	return c.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs a progress line to stderr, with an emoji prefix when enabled.
func LogInfo(emoji, msg string, useEmojis bool) {
	if useEmojis && emoji != "" {
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", emoji, msg)
		return
	}
	_, _ = fmt.Fprintln(os.Stderr, msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".snowdash_cache.db"
	}
	return filepath.Join(homeDir, ".snowdash_cache.db")
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".snowdash_snapshots.db"
	}
	return filepath.Join(homeDir, ".snowdash_snapshots.db")
}

// TruncateName cuts a name to at most maxWidth runes.
func TruncateName(name string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	runes := []rune(name)
	if len(runes) > maxWidth {
		return string(runes[:maxWidth])
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
