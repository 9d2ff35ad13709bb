package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestViperConfigGetString(t *testing.T) {
	v := viper.New()
	v.Set("name", "test")
	cfg := New(v)

	if got := cfg.GetString("name"); got != "test" {
		t.Errorf("GetString('name') = %q, want %q", got, "test")
	}
}

func TestViperConfigGetInt(t *testing.T) {
	v := viper.New()
	v.Set("port", 8343)
	cfg := New(v)

	if got := cfg.GetInt("port"); got != 8343 {
		t.Errorf("GetInt('port') = %d, want %d", got, 8343)
	}
}

func TestViperConfigGetBool(t *testing.T) {
	v := viper.New()
	v.Set("enabled", true)
	cfg := New(v)

	if got := cfg.GetBool("enabled"); !got {
		t.Error("GetBool('enabled') = false, want true")
	}
}

func TestViperConfigGetDuration(t *testing.T) {
	v := viper.New()
	v.Set("timeout", "5s")
	cfg := New(v)

	want := 5 * time.Second
	if got := cfg.GetDuration("timeout"); got != want {
		t.Errorf("GetDuration('timeout') = %v, want %v", got, want)
	}
}

func TestViperConfigIsSet(t *testing.T) {
	v := viper.New()
	v.Set("exists", true)
	cfg := New(v)

	if !cfg.IsSet("exists") {
		t.Error("IsSet('exists') = false, want true")
	}
	if cfg.IsSet("missing") {
		t.Error("IsSet('missing') = true, want false")
	}
}

func TestViperConfigSub(t *testing.T) {
	v := viper.New()
	v.Set("modules.sweep.snmp_enabled", true)
	v.Set("modules.sweep.probe_workers", 50)
	cfg := New(v)

	sub := cfg.Sub("modules.sweep")
	if sub == nil {
		t.Fatal("Sub('modules.sweep') = nil")
	}
	if got := sub.GetBool("snmp_enabled"); !got {
		t.Error("sub.GetBool('snmp_enabled') = false, want true")
	}
	if got := sub.GetInt("probe_workers"); got != 50 {
		t.Errorf("sub.GetInt('probe_workers') = %d, want %d", got, 50)
	}
}

func TestViperConfigSubMissing(t *testing.T) {
	v := viper.New()
	cfg := New(v)

	sub := cfg.Sub("nonexistent")
	if sub == nil {
		t.Fatal("Sub('nonexistent') should return empty Config, not nil")
	}
	if got := sub.GetString("anything"); got != "" {
		t.Errorf("empty config GetString() = %q, want empty", got)
	}
}

func TestViperConfigUnmarshal(t *testing.T) {
	v := viper.New()
	v.Set("host", "localhost")
	v.Set("port", 9090)
	cfg := New(v)

	var target struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	}
	if err := cfg.Unmarshal(&target); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if target.Host != "localhost" {
		t.Errorf("Host = %q, want %q", target.Host, "localhost")
	}
	if target.Port != 9090 {
		t.Errorf("Port = %d, want %d", target.Port, 9090)
	}
}

func TestNilViper(t *testing.T) {
	cfg := New(nil)
	// Should not panic and return zero values.
	if got := cfg.GetString("key"); got != "" {
		t.Errorf("nil viper GetString() = %q, want empty", got)
	}
	if cfg.Sub("anything") == nil {
		t.Error("nil viper Sub() should return empty Config")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load('') error = %v", err)
	}
	if got := cfg.GetInt("sweep.probe_workers"); got != 50 {
		t.Errorf("default sweep.probe_workers = %d, want 50", got)
	}
	if got := cfg.GetDuration("sweep.probe_timeout"); got != time.Second {
		t.Errorf("default sweep.probe_timeout = %v, want 1s", got)
	}
	if got := cfg.GetInt("perf.window"); got != 20 {
		t.Errorf("default perf.window = %d, want 20", got)
	}
}
