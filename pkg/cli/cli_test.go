package cli

import "testing"

func TestNewRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand(Options{Name: "screenbase", Description: "test"})

	want := []string{
		"search", "movie", "facets", "by-country", "top-commenters",
		"session", "ensure-indexes", "healthcheck", "version",
	}
	got := map[string]bool{}
	for _, c := range root.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Fatalf("missing subcommand %q", name)
		}
	}

	flag := root.PersistentFlags().Lookup("config-file")
	if flag == nil {
		t.Fatal("missing persistent --config-file flag")
	}
	if flag.Shorthand != "c" {
		t.Fatalf("config-file shorthand = %q, want c", flag.Shorthand)
	}
}

func TestSessionCommandRequiresEmail(t *testing.T) {
	root := NewRootCommand(Options{Name: "screenbase"})
	root.SetArgs([]string{"session", "login"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected login without --email to fail flag validation")
	}
}

func TestVersionCommandRunsWithoutConfig(t *testing.T) {
	root := NewRootCommand(Options{Name: "screenbase"})
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version returned error %v", err)
	}
}
