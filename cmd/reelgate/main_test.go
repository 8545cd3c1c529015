package main

import (
	"strings"
	"testing"
)

func TestCLIStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "running")
	requireContains(t, out, "No batches")
}

func TestCLIFilterCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"filter", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("filter list: %v", err)
	}
	requireContains(t, out, "No filter rules")

	out, _, err = runCLI(t, []string{
		"filter", "add", "--type", "performer", "--pattern", "Alice",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("filter add: %v", err)
	}
	requireContains(t, out, "Added rule")

	out, _, err = runCLI(t, []string{"filter", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("filter list: %v", err)
	}
	requireContains(t, out, "performer")
	requireContains(t, out, "Alice")

	ruleID := extractRuleID(t, out)

	out, _, err = runCLI(t, []string{"filter", "toggle", ruleID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("filter toggle: %v", err)
	}
	requireContains(t, out, "disabled")

	out, _, err = runCLI(t, []string{
		"filter", "update", ruleID, "--pattern", "(",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("filter update: %v", err)
	}
	requireContains(t, out, "Warning")

	out, _, err = runCLI(t, []string{"filter", "delete", ruleID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("filter delete: %v", err)
	}
	requireContains(t, out, "Deleted rule")
}

func TestCLIFilterResetRequiresConfirmation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"filter", "reset"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}

	out, _, err := runCLI(t, []string{"filter", "reset", "--yes"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("filter reset --yes: %v", err)
	}
	requireContains(t, out, "All filter rules deleted")
}

func TestCLIBatchCommandsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"batch", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("batch list: %v", err)
	}
	requireContains(t, out, "No batches")

	out, _, err = runCLI(t, []string{"scene", "retry-all"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("scene retry-all: %v", err)
	}
	requireContains(t, out, "No failed scenes")

	if _, _, err := runCLI(t, []string{"batch", "show", "batch-1"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for unknown batch")
	}

	if _, _, err := runCLI(t, []string{"batch", "clear"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected confirmation error for batch clear")
	}

	out, _, err = runCLI(t, []string{"batch", "clear", "--yes"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("batch clear --yes: %v", err)
	}
	requireContains(t, out, "Batch history cleared")
}

func TestCLITestNotifyUnconfigured(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "not") {
		t.Fatalf("expected unconfigured notification message, got %q", out)
	}
}

// extractRuleID pulls the first UUID-shaped cell from a rendered rule table.
func extractRuleID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "│")
		if len(fields) < 3 {
			continue
		}
		candidate := strings.TrimSpace(fields[1])
		if strings.Count(candidate, "-") == 4 && len(candidate) == 36 {
			return candidate
		}
	}
	t.Fatal("no rule id found in output")
	return ""
}
