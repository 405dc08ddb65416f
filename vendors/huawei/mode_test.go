package huawei

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nanoncore/olt-console/drivers/mock"
	"github.com/nanoncore/olt-console/types"
	"github.com/rs/zerolog"
)

var allModes = []types.Mode{types.ModeUser, types.ModeEnable, types.ModeConfig, types.ModeInterface, types.ModeBTV}

func hopCommands(path []Hop) []string {
	cmds := make([]string, 0, len(path))
	for _, h := range path {
		cmds = append(cmds, h.Command)
	}
	return cmds
}

func TestPathBetween(t *testing.T) {
	tests := []struct {
		from types.Mode
		to   types.Mode
		want []string
	}{
		{types.ModeUser, types.ModeUser, []string{}},
		{types.ModeUser, types.ModeEnable, []string{"enable"}},
		{types.ModeUser, types.ModeConfig, []string{"enable", "config"}},
		{types.ModeEnable, types.ModeUser, []string{"disable"}},
		{types.ModeEnable, types.ModeEnable, []string{}},
		{types.ModeEnable, types.ModeConfig, []string{"config"}},
		{types.ModeConfig, types.ModeEnable, []string{"quit"}},
		{types.ModeConfig, types.ModeUser, []string{"quit", "disable"}},
		{types.ModeConfig, types.ModeConfig, []string{}},
		{types.ModeInterface, types.ModeConfig, []string{"quit"}},
		{types.ModeInterface, types.ModeEnable, []string{"quit", "quit"}},
		{types.ModeInterface, types.ModeUser, []string{"quit", "quit", "disable"}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"_to_"+tt.to.String(), func(t *testing.T) {
			path, err := PathBetween(tt.from, tt.to)
			if err != nil {
				t.Fatalf("PathBetween() error: %v", err)
			}
			if got := hopCommands(path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PathBetween() commands = %v, want %v", got, tt.want)
			}

			// Each hop moves exactly one level and the chain is connected.
			cur := tt.from
			for _, h := range path {
				if h.From != cur {
					t.Errorf("Hop %q starts at %s, expected %s", h.Command, h.From, cur)
				}
				d := depth[h.From] - depth[h.To]
				if d != 1 && d != -1 {
					t.Errorf("Hop %q spans %d levels", h.Command, d)
				}
				cur = h.To
			}
			if cur != tt.to {
				t.Errorf("Path ends at %s, want %s", cur, tt.to)
			}
		})
	}
}

func TestPathBetweenRejectsSubContexts(t *testing.T) {
	for _, from := range allModes {
		for _, to := range []types.Mode{types.ModeInterface, types.ModeBTV} {
			_, err := PathBetween(from, to)
			var te *types.TransitionError
			if !errors.As(err, &te) {
				t.Errorf("PathBetween(%s, %s) expected TransitionError, got %v", from, to, err)
			}
			if !errors.Is(err, types.ErrInvalidTransition) {
				t.Errorf("PathBetween(%s, %s) expected ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestPathBetweenFromBTV(t *testing.T) {
	_, err := PathBetween(types.ModeBTV, types.ModeConfig)
	if !errors.Is(err, types.ErrNotImplemented) {
		t.Errorf("Expected ErrNotImplemented leaving btv, got %v", err)
	}
}

func newController(t *testing.T, start types.Mode, iface types.InterfaceID) (*ModeController, *mock.Driver) {
	t.Helper()
	console := mock.NewDriver("MA5600T")
	console.SetMode(start, iface)
	c := NewModeController(console, "10.0.0.1", 0, zerolog.Nop(), nil)
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	return c, console
}

func TestEnsureMode(t *testing.T) {
	ctx := context.Background()

	t.Run("user to config", func(t *testing.T) {
		c, console := newController(t, types.ModeUser, types.InterfaceID{})
		if err := c.EnsureMode(ctx, types.ModeConfig); err != nil {
			t.Fatalf("EnsureMode() error: %v", err)
		}
		if c.Mode() != types.ModeConfig || console.Mode() != types.ModeConfig {
			t.Errorf("Expected config on both sides, got %s / %s", c.Mode(), console.Mode())
		}
		if got := console.GetCommandHistory(); !reflect.DeepEqual(got, []string{"enable", "config"}) {
			t.Errorf("Unexpected commands %v", got)
		}
	})

	t.Run("already there", func(t *testing.T) {
		for _, m := range []types.Mode{types.ModeUser, types.ModeEnable, types.ModeConfig} {
			c, console := newController(t, m, types.InterfaceID{})
			if err := c.EnsureMode(ctx, m); err != nil {
				t.Fatalf("EnsureMode(%s) error: %v", m, err)
			}
			if n := len(console.GetCommandHistory()); n != 0 {
				t.Errorf("EnsureMode(%s) sent %d commands, want 0", m, n)
			}
		}
	})

	t.Run("interface and btv rejected", func(t *testing.T) {
		c, console := newController(t, types.ModeConfig, types.InterfaceID{})
		for _, m := range []types.Mode{types.ModeInterface, types.ModeBTV} {
			if err := c.EnsureMode(ctx, m); !errors.Is(err, types.ErrInvalidTransition) {
				t.Errorf("EnsureMode(%s) expected ErrInvalidTransition, got %v", m, err)
			}
		}
		if n := len(console.GetCommandHistory()); n != 0 {
			t.Errorf("Rejected transitions sent %d commands", n)
		}
	})

	t.Run("timeout keeps last confirmed mode", func(t *testing.T) {
		c, console := newController(t, types.ModeUser, types.InterfaceID{})
		console.SetTimeout("config")
		err := c.EnsureMode(ctx, types.ModeConfig)
		if !types.IsTimeout(err) {
			t.Fatalf("Expected timeout, got %v", err)
		}
		if c.Mode() != types.ModeEnable {
			t.Errorf("Expected enable after failed second hop, got %s", c.Mode())
		}
	})
}

func TestEnterInterfaceThenEnable(t *testing.T) {
	ctx := context.Background()
	c, console := newController(t, types.ModeConfig, types.InterfaceID{})

	if err := c.EnterInterface(ctx, 2, 1); err != nil {
		t.Fatalf("EnterInterface() error: %v", err)
	}
	if id, ok := c.Interface(); !ok || id != (types.InterfaceID{Frame: 2, Board: 1}) {
		t.Fatalf("Expected interface 2/1, got %v %v", id, ok)
	}

	console.ResetHistory()
	if err := c.EnsureMode(ctx, types.ModeEnable); err != nil {
		t.Fatalf("EnsureMode() error: %v", err)
	}
	if got := console.GetCommandHistory(); !reflect.DeepEqual(got, []string{"quit", "quit"}) {
		t.Errorf("Expected two quits, got %v", got)
	}
	if _, ok := c.Interface(); ok {
		t.Error("Interface should be cleared after leaving INTERFACE mode")
	}
}

func TestEnterInterface(t *testing.T) {
	ctx := context.Background()

	t.Run("same board is reused", func(t *testing.T) {
		c, console := newController(t, types.ModeInterface, types.InterfaceID{Frame: 0, Board: 1})
		if err := c.EnterInterface(ctx, 0, 1); err != nil {
			t.Fatalf("EnterInterface() error: %v", err)
		}
		if n := len(console.GetCommandHistory()); n != 0 {
			t.Errorf("Expected no commands, got %v", console.GetCommandHistory())
		}
	})

	t.Run("other board quits first", func(t *testing.T) {
		c, console := newController(t, types.ModeInterface, types.InterfaceID{Frame: 0, Board: 1})
		if err := c.EnterInterface(ctx, 0, 2); err != nil {
			t.Fatalf("EnterInterface() error: %v", err)
		}
		want := []string{"quit", "interface gpon 0/2"}
		if got := console.GetCommandHistory(); !reflect.DeepEqual(got, want) {
			t.Errorf("Commands = %v, want %v", got, want)
		}
	})

	t.Run("from user", func(t *testing.T) {
		c, console := newController(t, types.ModeUser, types.InterfaceID{})
		if err := c.EnterInterface(ctx, 0, 3); err != nil {
			t.Fatalf("EnterInterface() error: %v", err)
		}
		want := []string{"enable", "config", "interface gpon 0/3"}
		if got := console.GetCommandHistory(); !reflect.DeepEqual(got, want) {
			t.Errorf("Commands = %v, want %v", got, want)
		}
		if c.Mode() != types.ModeInterface {
			t.Errorf("Expected interface mode, got %s", c.Mode())
		}
	})

	t.Run("missing board times out", func(t *testing.T) {
		c, console := newController(t, types.ModeConfig, types.InterfaceID{})
		console.SetBoards(types.InterfaceID{Frame: 0, Board: 1})
		err := c.EnterInterface(ctx, 0, 7)
		if !types.IsTimeout(err) {
			t.Fatalf("Expected timeout, got %v", err)
		}
		if c.Mode() != types.ModeConfig {
			t.Errorf("Expected config after failed entry, got %s", c.Mode())
		}
	})

	t.Run("btv", func(t *testing.T) {
		c, _ := newController(t, types.ModeBTV, types.InterfaceID{})
		if err := c.EnterInterface(ctx, 0, 1); !errors.Is(err, types.ErrNotImplemented) {
			t.Errorf("Expected ErrNotImplemented, got %v", err)
		}
		if err := c.EnterBTV(ctx); !errors.Is(err, types.ErrNotImplemented) {
			t.Errorf("EnterBTV expected ErrNotImplemented, got %v", err)
		}
	})
}

func TestParsePrompt(t *testing.T) {
	tests := []struct {
		prompt string
		mode   types.Mode
		iface  types.InterfaceID
		ok     bool
	}{
		{"MA5600T>", types.ModeUser, types.InterfaceID{}, true},
		{"MA5600T#", types.ModeEnable, types.InterfaceID{}, true},
		{"MA5600T(config)#", types.ModeConfig, types.InterfaceID{}, true},
		{"MA5600T(config-if-gpon-0/1)#", types.ModeInterface, types.InterfaceID{Frame: 0, Board: 1}, true},
		{"  OLT-01(config-if-gpon-2/15)# ", types.ModeInterface, types.InterfaceID{Frame: 2, Board: 15}, true},
		{"MA5600T(config-btv)#", types.ModeBTV, types.InterfaceID{}, true},
		{"Password:", types.ModeUser, types.InterfaceID{}, false},
		{"MA5600T(config-ont-srvprofile-10)#", types.ModeUser, types.InterfaceID{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			mode, iface, ok := ParsePrompt(tt.prompt)
			if ok != tt.ok {
				t.Fatalf("ParsePrompt(%q) ok = %v, want %v", tt.prompt, ok, tt.ok)
			}
			if !ok {
				return
			}
			if mode != tt.mode {
				t.Errorf("mode = %s, want %s", mode, tt.mode)
			}
			if iface != tt.iface {
				t.Errorf("iface = %v, want %v", iface, tt.iface)
			}
		})
	}
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	console := mock.NewDriver("MA5600T")
	c := NewModeController(console, "10.0.0.1", 0, zerolog.Nop(), nil)

	console.SetMode(types.ModeInterface, types.InterfaceID{Frame: 0, Board: 4})
	if err := c.Sync(ctx); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if id, ok := c.Interface(); !ok || id != (types.InterfaceID{Frame: 0, Board: 4}) {
		t.Errorf("Expected interface 0/4, got %v (%v)", id, ok)
	}

	console.SetMode(types.ModeEnable, types.InterfaceID{})
	if err := c.Sync(ctx); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if c.Mode() != types.ModeEnable {
		t.Errorf("Expected enable, got %s", c.Mode())
	}
	if _, ok := c.Interface(); ok {
		t.Error("Interface must be cleared outside interface mode")
	}
	if n := len(console.GetCommandHistory()); n != 0 {
		t.Errorf("Sync must not send commands, got %v", console.GetCommandHistory())
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := c.Sync(cancelled); err == nil {
		t.Error("Expected error with cancelled context")
	}
}

func TestSyncLeavesProfileContext(t *testing.T) {
	ctx := context.Background()
	console := mock.NewDriver("MA5600T")
	console.SetSubContext("ont-srvprofile-10")
	c := NewModeController(console, "10.0.0.1", 0, zerolog.Nop(), nil)

	if err := c.Sync(ctx); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if c.Mode() != types.ModeConfig {
		t.Errorf("Expected config, got %s", c.Mode())
	}
	if got := console.GetCommandHistory(); !reflect.DeepEqual(got, []string{"quit"}) {
		t.Errorf("Expected a single quit, got %v", got)
	}

	if err := c.EnsureMode(ctx, types.ModeEnable); err != nil {
		t.Fatalf("EnsureMode() error: %v", err)
	}
	if console.Mode() != types.ModeEnable {
		t.Errorf("Expected console in enable, got %s", console.Mode())
	}
}

func TestSyncUnknownPrompt(t *testing.T) {
	console := mock.NewDriver("MA5600T")
	console.SetSubContext("ont-srvprofile-10")
	console.SetTimeout("quit")
	c := NewModeController(console, "10.0.0.1", 0, zerolog.Nop(), nil)

	err := c.Sync(context.Background())
	if !errors.Is(err, types.ErrTimeout) {
		t.Errorf("Expected timeout leaving the context, got %v", err)
	}
	if n := len(console.GetCommandHistory()); n != 1 {
		t.Errorf("Expected one quit, got %v", console.GetCommandHistory())
	}
}

func TestSyncAnchorsPromptsOnHostname(t *testing.T) {
	tests := []struct {
		name   string
		mode   types.Mode
		iface  types.InterfaceID
		prompt string
		stray  string
	}{
		{"user", types.ModeUser, types.InterfaceID{}, "MA5600T>", "  Description : cabinet>"},
		{"enable", types.ModeEnable, types.InterfaceID{}, "MA5600T#", "  Description : cabinet#"},
		{"config", types.ModeConfig, types.InterfaceID{}, "MA5600T(config)#", "  Description : a(config)#"},
		{"interface", types.ModeInterface, types.InterfaceID{Frame: 0, Board: 1}, "MA5600T(config-if-gpon-0/1)#", "OLT2(config-if-gpon-0/1)#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, tt.mode, tt.iface)
			if c.Hostname() != "MA5600T" {
				t.Fatalf("Expected hostname MA5600T, got %q", c.Hostname())
			}
			p := c.Prompt()
			if p.MatchString("display ont info 0 1 2 all\r\n" + tt.stray + "\r\n") {
				t.Errorf("Prompt %s must not match output line %q", p, tt.stray)
			}
			if !p.MatchString("display ont info 0 1 2 all\r\n  Total: 0\r\n\r\n" + tt.prompt) {
				t.Errorf("Prompt %s must match %q", p, tt.prompt)
			}
			if !p.MatchString("\x1b[37D" + tt.prompt) {
				t.Errorf("Prompt %s must match %q after a pager redraw", p, tt.prompt)
			}
		})
	}
}

func TestPromptBeforeSync(t *testing.T) {
	c := NewModeController(mock.NewDriver("MA5600T"), "10.0.0.1", 0, zerolog.Nop(), nil)
	if c.Hostname() != "" {
		t.Errorf("Expected no hostname before Sync, got %q", c.Hostname())
	}
	if !c.Prompt().MatchString("OLT-7>") {
		t.Error("Expected any hostname to match before Sync")
	}
}
