// Package logging installs bufferly's slog logger: coloured lines when a
// human is watching a terminal, JSON lines otherwise. A tray launch has no
// terminal, so the app can also write to a log file in its data directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// LogFile is the file name Output writes to.
const LogFile = "bufferly.log"

type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps the log_format setting; anything unrecognised is auto.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	}
	return FormatAuto
}

// ParseLevel maps the log_level setting, accepting "warning" for warn. An
// empty or unknown value is info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewHandler picks tinter for FormatText, or for FormatAuto when w is a
// terminal, and JSON for everything else.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	if format == FormatText || (format == FormatAuto && IsTTY(w)) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup makes a logger writing to w the slog default. A nil w means stderr.
func Setup(w io.Writer, format Format, level slog.Level) {
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(slog.New(NewHandler(w, format, level)))
}

// Output returns where the tray app should log: stderr when it is a
// terminal, else LogFile in dataDir. The returned close func is never nil.
func Output(dataDir string) (io.Writer, func() error, error) {
	if IsTTY(os.Stderr) {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(filepath.Join(dataDir, LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return os.Stderr, func() error { return nil }, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f.Close, nil
}

// Preview shortens clipboard text for debug logs.
func Preview(s string) string {
	const limit = 120
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
