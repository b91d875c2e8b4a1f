package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	logBuffer = nil
	logCallback = nil
	mutex.Unlock()
}

func levelsEnabled(logger *slog.Logger) (debug, info, warn bool) {
	ctx := context.Background()
	h := logger.Handler()
	return h.Enabled(ctx, slog.LevelDebug), h.Enabled(ctx, slog.LevelInfo), h.Enabled(ctx, slog.LevelWarn)
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()
	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Modules: map[string]string{"capture": "debug", "api": "warn"},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"capture", true, true, true},
		{"api", false, false, true},
		{"display", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			debug, info, warn := levelsEnabled(GetLogger(tt.module))
			if debug != tt.wantDebug || info != tt.wantInfo || warn != tt.wantWarn {
				t.Errorf("enabled debug/info/warn = %v/%v/%v, want %v/%v/%v",
					debug, info, warn, tt.wantDebug, tt.wantInfo, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	early := GetLogger("capture")
	if debug, _, _ := levelsEnabled(early); debug {
		t.Error("logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"capture": "debug"}})

	if debug, _, _ := levelsEnabled(early); !debug {
		t.Error("early logger should pick up the module level after Initialize")
	}
}

func TestSetLevelsAtRuntime(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info", Format: "text"})
	logger := GetLogger("capture")

	SetLevels(Config{Level: "error", Modules: map[string]string{"capture": "debug"}})
	if debug, _, _ := levelsEnabled(logger); !debug {
		t.Error("capture should log debug after SetLevels")
	}
	if _, info, _ := levelsEnabled(GetLogger("api")); info {
		t.Error("new module should inherit the error global level")
	}

	SetLevels(Config{Level: "warn"})
	if _, info, warn := levelsEnabled(logger); info || !warn {
		t.Errorf("capture info/warn = %v/%v after dropping override, want false/true", info, warn)
	}
}

func TestBufferCapturesEntries(t *testing.T) {
	resetState()
	Initialize(Config{Level: "debug", Format: "text"})

	var seen []LogEntry
	SetLogCallback(func(e LogEntry) { seen = append(seen, e) })

	GetLogger("capture").Warn("frame skipped", "error", errors.New("boom"), "count", 3)

	entries := GetBuffer().ReadAll()
	if len(entries) == 0 {
		t.Fatal("no entries in buffer")
	}
	last := entries[len(entries)-1]
	if last.Module != "capture" || last.Level != "warn" || last.Message != "frame skipped" {
		t.Errorf("entry = %+v", last)
	}
	if last.Attributes["error"] != "boom" {
		t.Errorf("error attribute = %v, want boom", last.Attributes["error"])
	}
	if len(seen) == 0 || seen[len(seen)-1].Seq != last.Seq {
		t.Error("callback did not receive the buffered entry")
	}
}

func TestRingBufferWrapAndTail(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		rb.Write(LogEntry{Message: msg})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count = %d, want 3", rb.Count())
	}

	got := rb.ReadAll()
	want := []string{"c", "d", "e"}
	for i, e := range got {
		if e.Message != want[i] {
			t.Errorf("ReadAll[%d] = %q, want %q", i, e.Message, want[i])
		}
		if e.Seq != uint64(i+3) {
			t.Errorf("ReadAll[%d].Seq = %d, want %d", i, e.Seq, i+3)
		}
	}

	tail := rb.Tail(2)
	if len(tail) != 2 || tail[0].Message != "d" || tail[1].Message != "e" {
		t.Errorf("Tail(2) = %+v", tail)
	}
	if got := NewRingBuffer(4).ReadAll(); got != nil {
		t.Errorf("empty ReadAll = %v, want nil", got)
	}
}

func TestBufferHandlerGroups(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info"})

	h := NewBufferHandler(slog.LevelInfo).WithAttrs([]slog.Attr{slog.String("module", "api")}).WithGroup("req")
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "served", 0)
	r.AddAttrs(slog.Int("status", 200), slog.Group("peer", slog.String("addr", "1.2.3.4")))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatal(err)
	}

	entries := GetBuffer().ReadAll()
	e := entries[len(entries)-1]
	if e.Module != "api" {
		t.Errorf("Module = %q, want api", e.Module)
	}
	if e.Attributes["req.status"] != int64(200) {
		t.Errorf("req.status = %#v", e.Attributes["req.status"])
	}
	if e.Attributes["req.peer.addr"] != "1.2.3.4" {
		t.Errorf("req.peer.addr = %#v", e.Attributes["req.peer.addr"])
	}
}

func TestMultiHandlerFanOut(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(h).With("module", "capture")

	logger.Debug("debug message")
	logger.Warn("warn message")

	if !strings.Contains(debugBuf.String(), "debug message") || !strings.Contains(debugBuf.String(), "warn message") {
		t.Errorf("debug handler output = %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "debug message") {
		t.Error("warn handler received a debug record")
	}
	if !strings.Contains(warnBuf.String(), "module=capture") {
		t.Errorf("warn handler lost attrs: %q", warnBuf.String())
	}
}

func TestJournalKey(t *testing.T) {
	tests := []struct {
		groups []string
		key    string
		want   string
	}{
		{nil, "module", "MODULE"},
		{[]string{"req"}, "status", "REQ_STATUS"},
		{nil, "peak.x", "PEAK_X"},
	}
	for _, tt := range tests {
		if got := journalKey(tt.groups, tt.key); got != tt.want {
			t.Errorf("journalKey(%v, %q) = %q, want %q", tt.groups, tt.key, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
