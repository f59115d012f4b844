package guard

import "testing"

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing session key", func(c *Config) { c.Session.Key = "" }, true},
		{"remember without length", func(c *Config) { c.Remember.Length = 0 }, true},
		{"remember without cookie name", func(c *Config) { c.Remember.CookieName = "" }, true},
		{"remember disabled skips remember checks", func(c *Config) {
			c.Remember.Enabled = false
			c.Remember.Length = 0
			c.Remember.CookieName = ""
		}, false},
		{"purge chance below range", func(c *Config) { c.Remember.PurgeChance = -0.1 }, true},
		{"purge chance above range", func(c *Config) { c.Remember.PurgeChance = 1.1 }, true},
		{"negative event buffer", func(c *Config) { c.Events.BufferSize = -1 }, true},
		{"events disabled skips buffer check", func(c *Config) {
			c.Events.Enabled = false
			c.Events.BufferSize = -1
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFailureReasonMessages(t *testing.T) {
	if ReasonBadAttempt.Message() == ReasonInvalidPassword.Message() {
		t.Fatal("reasons should map to distinct messages")
	}
	if FailureReason("other").Message() == "" {
		t.Fatal("unknown reasons still need user-facing text")
	}
}
