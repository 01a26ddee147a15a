package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":  FormatJSON,
		"JSON":  FormatJSON,
		"text":  FormatText,
		"tint":  FormatText,
		"":      FormatAuto,
		"bogus": FormatAuto,
	}
	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug {
		t.Error("expected debug level")
	}
	if ParseLevel("WARN") != slog.LevelWarn {
		t.Error("expected warn level")
	}
	if ParseLevel("loud") != slog.LevelInfo {
		t.Error("unknown level should fall back to info")
	}
}

func TestNonTTYAutoUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, FormatAuto, slog.LevelInfo))
	logger.Info("clipboard item saved", "type", "public.utf8-plain-text")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "clipboard item saved" {
		t.Errorf("unexpected msg: %v", rec["msg"])
	}
}

func TestPreview(t *testing.T) {
	short := "hello"
	if Preview(short) != short {
		t.Error("short text should be unchanged")
	}
	long := strings.Repeat("é", 200)
	p := Preview(long)
	if !strings.HasSuffix(p, "…") || len([]rune(p)) != 121 {
		t.Errorf("unexpected preview length %d", len([]rune(p)))
	}
}

func TestParseLevelAliases(t *testing.T) {
	if ParseLevel(" warning ") != slog.LevelWarn {
		t.Error("warning should map to warn")
	}
	if ParseLevel("") != slog.LevelInfo {
		t.Error("empty level should be info")
	}
}

func TestOutputWritesLogFileWithoutTerminal(t *testing.T) {
	if IsTTY(os.Stderr) {
		t.Skip("stderr is a terminal")
	}
	dir := t.TempDir()
	w, closeLog, err := Output(dir)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	slog.New(NewHandler(w, FormatAuto, slog.LevelInfo)).Info("overlay shown")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFile))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"overlay shown"`) {
		t.Errorf("unexpected log file contents: %q", data)
	}
}
