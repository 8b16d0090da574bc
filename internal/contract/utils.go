package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hfconf/hfconf/schema"
)

// Sample kind label constants.
const (
	DataValue   = "Data"
	SignalValue = "Signal"
	BkgValue    = "Bkg"
)

// Color variables for console output.
var (
	WarningColor = color.New(color.FgYellow, color.Bold) // WarningColor marks findings that likely need a fix.
	InfoColor    = color.New(color.FgCyan)               // InfoColor marks informational findings.
	DataColor    = color.New(color.FgWhite, color.Bold)
	SignalColor  = color.New(color.FgMagenta, color.Bold)
	BkgColor     = color.New(color.FgGreen)
)

// GetPlainSeverityLabel returns the display label of a finding severity.
func GetPlainSeverityLabel(sev schema.Severity) string {
	switch sev {
	case schema.SeverityWarning:
		return "Warning"
	default:
		return "Info"
	}
}

// GetColorSeverityLabel returns a colored severity label for console output (table).
func GetColorSeverityLabel(sev schema.Severity) string {
	text := GetPlainSeverityLabel(sev)
	if sev == schema.SeverityWarning {
		return WarningColor.Sprint(text)
	}
	return InfoColor.Sprint(text)
}

// GetPlainSampleKind returns the role label of a sample within its fit config.
func GetPlainSampleKind(s schema.SampleSummary, signalSample string) string {
	switch {
	case s.IsData:
		return DataValue
	case s.Name == signalSample:
		return SignalValue
	default:
		return BkgValue
	}
}

// GetColorSampleKind returns a colored sample role label for console output (table).
func GetColorSampleKind(s schema.SampleSummary, signalSample string) string {
	text := GetPlainSampleKind(s, signalSample)
	switch text {
	case DataValue:
		return DataColor.Sprint(text)
	case SignalValue:
		return SignalColor.Sprint(text)
	default:
		return BkgColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout for an empty path.
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

// StatusPrefix returns an emoji prefix for status lines when emojis are enabled.
func StatusPrefix(cfg *Config, emoji string) string {
	if cfg.UseEmojis {
		return emoji + " "
	}
	return ""
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".hfconf_runs.db"
	}
	return filepath.Join(homeDir, ".hfconf_runs.db")
}

// RemoveStaleWorkspace deletes a workspace file left by a previous engine run.
// It reports whether a file was removed; a missing file is not an error.
func RemoveStaleWorkspace(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("workspace path %s is a directory", path)
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to remove stale workspace %s: %w", path, err)
	}
	return true, nil
}

// TruncateExpr truncates a cut expression to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." suffix and at least one character.
func TruncateExpr(expr string, maxWidth int) string {
	runes := []rune(expr)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return expr
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
