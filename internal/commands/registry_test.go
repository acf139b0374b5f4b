package commands

import (
	"errors"
	"testing"
)

func TestRegistry_FindByAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&RmCmd{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, name := range []string{"rm", "delete"} {
		cmd, ok := r.Find(name)
		if !ok || cmd.Name() != "rm" {
			t.Errorf("Find(%q) = %v, %v", name, cmd, ok)
		}
	}
}

func TestRegistry_DuplicateAliasAddsNothing(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&AddCmd{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// "update" is free but "create" is taken by add.
	err := r.Register(&dupCmd{EditCmd{}})
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Fatalf("expected ErrDuplicateCommand, got %v", err)
	}
	if _, ok := r.Find("edit2"); ok {
		t.Error("expected failed registration to add nothing")
	}
}

type dupCmd struct{ EditCmd }

func (c *dupCmd) Name() string      { return "edit2" }
func (c *dupCmd) Aliases() []string { return []string{"create"} }

func TestRegistry_AllSortedAndUnique(t *testing.T) {
	cmds := DefaultRegistry.All()
	seen := make(map[string]bool)
	for i, cmd := range cmds {
		if seen[cmd.Name()] {
			t.Errorf("duplicate command %s", cmd.Name())
		}
		seen[cmd.Name()] = true
		if i > 0 && cmds[i-1].Name() >= cmd.Name() {
			t.Errorf("not sorted: %s before %s", cmds[i-1].Name(), cmd.Name())
		}
	}
	for _, name := range []string{"add", "board", "done", "edit", "export", "link", "list", "login", "logout", "move", "register", "rm", "show", "storage", "sweep", "unlink", "watch", "whoami"} {
		if !seen[name] {
			t.Errorf("command %s not registered", name)
		}
	}
}
