package xconf

import (
	"testing"
)

func FuzzNewFromBytes(f *testing.F) {
	f.Add([]byte("base:\n  name: x\n"), true)
	f.Add([]byte(`{"collector":{"timeout":"1s"}}`), false)
	f.Add([]byte("collector:\n  retry:\n    attempts: -1\n"), true)

	f.Fuzz(func(t *testing.T, data []byte, isYAML bool) {
		format := FormatJSON
		if isYAML {
			format = FormatYAML
		}

		cfg, err := NewFromBytes(data, format)
		if err != nil {
			return
		}
		app := cfg.App()
		if err := app.Validate(); err != nil {
			t.Fatalf("accepted config fails validation: %v", err)
		}
	})
}
