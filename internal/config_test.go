package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestModelConfig_DisabledSkipsValidation(t *testing.T) {
	cfg := ModelConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled model config should pass: %v", err)
	}
}

func TestModelConfig_EnabledRequiresURL(t *testing.T) {
	cfg := ModelConfig{Enabled: true, Name: "gpt-4o-mini", MaxTokens: 512, TimeoutSeconds: 10, RequestsPerMinute: 30}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled model config without url should fail")
	}
}

func TestModelConfig_TemperatureRange(t *testing.T) {
	cfg := ModelConfig{
		Enabled: true, URL: "https://api.example.com/v1", Name: "gpt-4o-mini",
		MaxTokens: 512, Temperature: 3.5, TimeoutSeconds: 10, RequestsPerMinute: 30,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("temperature above 2.0 should fail")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
