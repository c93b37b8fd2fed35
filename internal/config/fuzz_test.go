package config

import "testing"

// FuzzLoadWithWarnings checks that arbitrary input never panics the parser or
// the unknown-field walk.
func FuzzLoadWithWarnings(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("settle_delay: 1s\n"))
	f.Add([]byte("daemon:\n  binary: DobbyDaemon\n  extra: 1\n"))
	f.Add([]byte("network: [1, 2]\n"))
	f.Add([]byte("- a\n- b\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, _, err := LoadWithWarnings(data)
		if err == nil && cfg == nil {
			t.Fatal("nil config without error")
		}
	})
}
