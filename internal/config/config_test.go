package config

import "testing"

func validModules() []Module {
	return []Module{
		{Index: 1, Backend: "hardware", Device: "/dev/ttyS0"},
		{Index: 2, Backend: "soft", Pin: "GPIO17"},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := Default()
	cfg.Module = validModules()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsNoModules(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for zero modules")
	}
}

func TestValidateRejectsDuplicateIndex(t *testing.T) {
	cfg := Default()
	cfg.Module = []Module{
		{Index: 1, Backend: "hardware", Device: "/dev/ttyS0"},
		{Index: 1, Backend: "soft", Pin: "GPIO17"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for duplicate module index")
	}
}

func TestValidateRejectsOutOfRangeIndex(t *testing.T) {
	cfg := Default()
	cfg.Module = []Module{{Index: 9, Backend: "hardware", Device: "/dev/ttyS0"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for module index 9")
	}
}

func TestValidateRejectsHardwareWithoutDevice(t *testing.T) {
	cfg := Default()
	cfg.Module = []Module{{Index: 1, Backend: "hardware"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for hardware backend without Device")
	}
}

func TestValidateRejectsSoftWithoutPin(t *testing.T) {
	cfg := Default()
	cfg.Module = []Module{{Index: 1, Backend: "soft"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for soft backend without Pin")
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Module = []Module{{Index: 1, Backend: "bluetooth"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for unknown backend")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/echoguard8d.toml"); err == nil {
		t.Fatal("Load() = nil error, want error for missing file")
	}
}
