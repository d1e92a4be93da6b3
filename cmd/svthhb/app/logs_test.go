package app

import (
	"testing"
)

func TestLogsCommandRegistered(t *testing.T) {
	root := NewSvthhbCommand()
	for _, sub := range root.Commands() {
		if sub.Name() == "logs" {
			if sub.Flags().Lookup("follow") == nil {
				t.Fatalf("logs command is missing the --follow flag")
			}
			return
		}
	}
	t.Fatalf("logs command is not registered on the root command")
}

func TestLogsCommandFollowShorthand(t *testing.T) {
	cmd := NewLogsCommand(&GlobalOptions{})
	flag := cmd.Flags().ShorthandLookup("f")
	if flag == nil || flag.Name != "follow" {
		t.Fatalf("expected -f to map to --follow, got %+v", flag)
	}
}
