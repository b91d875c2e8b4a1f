package main

import "testing"

func TestLoggingConfig(t *testing.T) {
	opts := &Options{
		LoggingLevel:   "info",
		LoggingFormat:  "json",
		LoggingCapture: "warn",
		LoggingDisplay: "error",
		LoggingAPI:     "info",
		LoggingHTTP:    "warn",
		LoggingDevices: "debug",
	}
	cfg := loggingConfig(opts)

	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("level/format = %s/%s", cfg.Level, cfg.Format)
	}
	want := map[string]string{
		"capture": "warn",
		"display": "error",
		"api":     "info",
		"http":    "warn",
		"devices": "debug",
	}
	for module, level := range want {
		if got := cfg.Modules[module]; got != level {
			t.Errorf("Modules[%s] = %q, want %q", module, got, level)
		}
	}
}
