package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// resetGlobal clears the process configuration so each test starts
// uninitialized.
func resetGlobal(t *testing.T) {
	t.Helper()
	reset := func() {
		configMutex.Lock()
		globalConfig, globalPath = nil, ""
		configMutex.Unlock()
	}
	reset()
	t.Cleanup(reset)
}

func TestInitialize(t *testing.T) {
	resetGlobal(t)
	path := writeConfig(t, "guardrail:\n  user_name: alice\n")

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("GetConfig() returned nil after Initialize")
	}
	if cfg.Guardrail.UserName != "alice" {
		t.Errorf("UserName = %q, want alice", cfg.Guardrail.UserName)
	}
	if abs, _ := filepath.Abs(path); Path() != abs {
		t.Errorf("Path() = %q, want %q", Path(), abs)
	}
}

func TestInitialize_SamePathKeepsSnapshot(t *testing.T) {
	resetGlobal(t)
	path := writeConfig(t, "guardrail:\n  user_name: alice\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	first := GetConfig()

	if err := os.WriteFile(path, []byte("guardrail:\n  user_name: bob\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(path); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if GetConfig() != first {
		t.Error("Initialize with the same path reloaded the file")
	}
}

func TestInitialize_OtherPathReplaces(t *testing.T) {
	resetGlobal(t)
	if err := Initialize(writeConfig(t, "guardrail:\n  user_name: alice\n")); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	other := writeConfig(t, "guardrail:\n  user_name: bob\n")
	if err := Initialize(other); err != nil {
		t.Fatalf("Initialize(other) error = %v", err)
	}
	if got := GetConfig().Guardrail.UserName; got != "bob" {
		t.Errorf("UserName = %q, want bob from the new path", got)
	}
	if abs, _ := filepath.Abs(other); Path() != abs {
		t.Errorf("Path() = %q, want %q", Path(), abs)
	}
}

func TestInitialize_ErrorKeepsPrevious(t *testing.T) {
	resetGlobal(t)

	if err := Initialize(writeConfig(t, "detectors:\n  mode: psychic\n")); err == nil {
		t.Fatal("Initialize() expected error")
	}
	if GetConfig() != nil || Path() != "" {
		t.Error("failed Initialize installed a configuration")
	}

	good := writeConfig(t, "guardrail:\n  user_name: alice\n")
	if err := Initialize(good); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := Initialize(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Initialize() expected error for missing file")
	}
	if got := GetConfig().Guardrail.UserName; got != "alice" {
		t.Errorf("UserName = %q, previous configuration should be kept", got)
	}
}

func TestSetConfig(t *testing.T) {
	resetGlobal(t)
	cfg := NewTestConfig().WithListenAddress("127.0.0.1:1234").Build()

	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("GetConfig() did not return the configuration passed to SetConfig")
	}
	if Path() != "" {
		t.Errorf("Path() = %q, want empty without a backing file", Path())
	}
	if _, err := Reload(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Reload() error = %v, want ErrNotInitialized", err)
	}
}

func TestReloadGuardrail(t *testing.T) {
	resetGlobal(t)

	if _, err := ReloadGuardrail(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("ReloadGuardrail() before Initialize error = %v, want ErrNotInitialized", err)
	}

	path := writeConfig(t, "guardrail:\n  user_name: alice\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	content := "guardrail:\n  user_name: bob\n  input:\n    functions: [sentiment]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := ReloadGuardrail()
	if err != nil {
		t.Fatalf("ReloadGuardrail() error = %v", err)
	}
	if g.UserName != "bob" || g.Input == nil || g.Input.Functions[0] != "sentiment" {
		t.Errorf("guardrail = %+v", g)
	}
	if got := GetConfig().Guardrail.UserName; got != "bob" {
		t.Errorf("process configuration UserName = %q, want bob", got)
	}

	if err := os.WriteFile(path, []byte("guardrail: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReloadGuardrail(); err == nil {
		t.Fatal("ReloadGuardrail() expected error for malformed file")
	}
	if got := GetConfig().Guardrail.UserName; got != "bob" {
		t.Errorf("failed reload changed the configuration: UserName = %q", got)
	}
}

func TestGetConfig_Concurrent(t *testing.T) {
	resetGlobal(t)
	SetConfig(NewDefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if GetConfig() == nil {
				t.Error("GetConfig() returned nil")
			}
		}()
		go func() {
			defer wg.Done()
			SetConfig(NewDefaultConfig())
		}()
	}
	wg.Wait()
}
