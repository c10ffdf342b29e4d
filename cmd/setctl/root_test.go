package main

import "testing"

func TestCommands(t *testing.T) {
	for _, name := range []string{"aggregate", "import", "migrate"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %s, got %v (%v)", name, cmd, err)
		}
	}

	cmd, _, _ := rootCmd.Find([]string{"aggregate"})
	if cmd.Flags().Lookup("test") == nil {
		t.Error("expected --test flag on aggregate")
	}
}

func TestRunCmd_RejectsArgs(t *testing.T) {
	cmd := newRunCmd(importKind)
	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Error("expected positional arguments to be rejected")
	}
}
