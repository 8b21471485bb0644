package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"courier/internal/cli"
	"courier/internal/credential"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
	if GetVersion() != testVersion {
		t.Errorf("Expected GetVersion to return %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "courier" {
		t.Errorf("Expected Use to be 'courier', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestRootSubcommands(t *testing.T) {
	expected := []string{"auth", "call", "shell", "version", "self-update"}
	for _, name := range expected {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "courier version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})

	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	if !strings.Contains(buf.String(), "courier version 1.0.0") {
		t.Errorf("Unexpected version output: %q", buf.String())
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "auth required",
			err:  &cli.AuthRequiredError{Endpoint: "https://api.example.com"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "auth expired",
			err:  &cli.AuthExpiredError{Endpoint: "https://api.example.com"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "refresh rejected",
			err:  &credential.RefreshRejectedError{Status: 400, Body: "invalid_grant"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "auth failed",
			err:  &cli.AuthFailedError{Endpoint: "https://api.example.com", Reason: errors.New("denied")},
			want: ExitCodeAuthFailed,
		},
		{
			name: "wrapped auth required",
			err:  fmt.Errorf("calling api: %w", &cli.AuthRequiredError{}),
			want: ExitCodeAuthRequired,
		},
		{
			name: "generic error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
