package config

import (
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	conf, err := load(nil, env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Addr != ":8080" {
		t.Errorf("Addr %q, want :8080", conf.Addr)
	}
	if conf.Debug {
		t.Error("Debug should default to false")
	}
	if conf.OutboxSize != 256 {
		t.Errorf("OutboxSize %d, want 256", conf.OutboxSize)
	}
	if conf.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout %v, want 10s", conf.WriteTimeout)
	}
	if len(conf.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins %v, want none", conf.AllowedOrigins)
	}
	if len(conf.RegistryOptions()) != 3 {
		t.Error("RegistryOptions should carry outbox, write timeout and ping interval")
	}
}

func TestLoad_Env(t *testing.T) {
	conf, err := load(nil, env(map[string]string{
		"PORT":                  "9000",
		"DEBUG":                 "debug",
		"RELAY_OUTBOX_SIZE":     "8",
		"RELAY_WRITE_TIMEOUT":   "2s",
		"RELAY_PING_INTERVAL":   "0",
		"RELAY_ALLOWED_ORIGINS": "http://a.example, http://b.example,",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Addr != ":9000" || !conf.Debug || conf.OutboxSize != 8 {
		t.Errorf("got %+v", conf)
	}
	if conf.WriteTimeout != 2*time.Second || conf.PingInterval != 0 {
		t.Errorf("durations %v %v", conf.WriteTimeout, conf.PingInterval)
	}
	if len(conf.AllowedOrigins) != 2 || conf.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("AllowedOrigins %v", conf.AllowedOrigins)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	conf, err := load([]string{"-addr", "127.0.0.1:7000", "-outbox", "4", "-debug=false"},
		env(map[string]string{"PORT": "9000", "DEBUG": "debug"}))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Addr != "127.0.0.1:7000" || conf.OutboxSize != 4 || conf.Debug {
		t.Errorf("got %+v", conf)
	}
}

func TestLoad_Invalid(t *testing.T) {
	var testcases = []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad env int", nil, map[string]string{"RELAY_OUTBOX_SIZE": "lots"}},
		{"bad env duration", nil, map[string]string{"RELAY_WRITE_TIMEOUT": "soon"}},
		{"zero outbox", []string{"-outbox", "0"}, nil},
		{"negative duration", []string{"-ping-interval", "-1s"}, nil},
		{"unknown flag", []string{"-nope"}, nil},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := load(tc.args, env(tc.env)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
