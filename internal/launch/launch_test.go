package launch

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aayushdutt/mcprovision/internal/loader"
	"github.com/aayushdutt/mcprovision/internal/manifest"
	"github.com/aayushdutt/mcprovision/internal/mcpath"
	"github.com/aayushdutt/mcprovision/internal/rules"
)

func TestGameFeatures(t *testing.T) {
	cases := []struct {
		name string
		qp   QuickPlay
		want rules.Features
	}{
		{"nil", nil, rules.Features{HasQuickPlaysSupport: rules.Bool(true)}},
		{"singleplayer", Singleplayer{World: "world1"}, rules.Features{HasQuickPlaysSupport: rules.Bool(true), IsQuickPlaySingleplayer: rules.Bool(true)}},
		{"multiplayer", Multiplayer{Address: "mc.example.com"}, rules.Features{HasQuickPlaysSupport: rules.Bool(true), IsQuickPlayMultiplayer: rules.Bool(true)}},
		{"realms", Realms{ID: "123"}, rules.Features{HasQuickPlaysSupport: rules.Bool(true), IsQuickPlayRealms: rules.Bool(true)}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := gameFeatures(c.qp)
			if (got.IsQuickPlaySingleplayer == nil) != (c.want.IsQuickPlaySingleplayer == nil) {
				t.Errorf("singleplayer flag mismatch")
			}
			if (got.IsQuickPlayMultiplayer == nil) != (c.want.IsQuickPlayMultiplayer == nil) {
				t.Errorf("multiplayer flag mismatch")
			}
			if (got.IsQuickPlayRealms == nil) != (c.want.IsQuickPlayRealms == nil) {
				t.Errorf("realms flag mismatch")
			}
			if got.HasQuickPlaysSupport == nil || !*got.HasQuickPlaysSupport {
				t.Errorf("expected has_quick_plays_support=true")
			}
		})
	}
}

func TestQuickPlayVariables(t *testing.T) {
	vars := quickPlayVariables(Multiplayer{Address: "play.example.com"})
	if vars["${quickPlayMultiplayer}"] != "play.example.com" {
		t.Errorf("got %q", vars["${quickPlayMultiplayer}"])
	}
	if vars["${quickPlaySingleplayer}"] != "" || vars["${quickPlayRealms}"] != "" {
		t.Errorf("expected the other variants to be empty")
	}
}

func TestSubstitute(t *testing.T) {
	vars := map[string]string{"${foo}": "bar", "${baz}": "qux"}
	got := substitute("a ${foo} b ${baz}", vars)
	if got != "a bar b qux" {
		t.Errorf("got %q", got)
	}
}

func TestExpandArgument_Literal(t *testing.T) {
	arg := manifest.Argument{Literal: "-Xmx${mem}"}
	got := expandArgument(arg, rules.Features{}, map[string]string{"${mem}": "2G"})
	if len(got) != 1 || got[0] != "-Xmx2G" {
		t.Errorf("got %v", got)
	}
}

func TestExpandArgument_RuleGated(t *testing.T) {
	arg := manifest.Argument{
		IsRule: true,
		Rules: []rules.Rule{
			{Action: rules.Allow, Features: &rules.Features{IsQuickPlaySingleplayer: rules.Bool(true)}},
		},
		Value: []string{"--quickPlaySingleplayer", "${quickPlaySingleplayer}"},
	}

	vars := map[string]string{"${quickPlaySingleplayer}": "world1"}

	if got := expandArgument(arg, rules.Features{}, vars); got != nil {
		t.Errorf("expected nil for non-matching feature set, got %v", got)
	}

	have := rules.Features{IsQuickPlaySingleplayer: rules.Bool(true)}
	got := expandArgument(arg, have, vars)
	want := []string{"--quickPlaySingleplayer", "world1"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v", got)
	}
}

func TestBuildClasspath_VanillaOnly(t *testing.T) {
	c := &Composer{}
	dataDir := t.TempDir()
	mc := mcpath.NewMC(dataDir)
	ver := mcpath.NewVersion(dataDir, "1.20.4")

	vm := &manifest.VersionManifest{
		ID: "1.20.4",
		Libraries: []manifest.Library{
			{
				Name: "com.example:lib:1.0",
				Downloads: &manifest.LibraryDownloads{
					Artifact: &manifest.Artifact{Path: "com/example/lib/1.0/lib-1.0.jar"},
				},
			},
		},
	}

	got, err := c.buildClasspath(context.Background(), mc, ver, vm, loader.NewVanillaLoaderVersion())
	if err != nil {
		t.Fatalf("buildClasspath failed: %v", err)
	}

	wantLib := filepath.Join(mc.LibraryPath(), "com/example/lib/1.0/lib-1.0.jar")
	if !strings.Contains(got, wantLib) {
		t.Errorf("expected classpath to contain %q, got %q", wantLib, got)
	}
	if !strings.Contains(got, ver.ClientJar()) {
		t.Errorf("expected classpath to contain client jar, got %q", got)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()
	inst := newInstance("1.20.4", loader.Vanilla, "", nil)

	reg.add(inst)
	if _, ok := reg.Get(inst.ID); !ok {
		t.Fatal("expected instance to be registered")
	}
	if len(reg.List()) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(reg.List()))
	}

	inst.appendLine(LogLine{Text: "hello", Stream: "stdout"})
	lines := inst.Lines()
	if len(lines) != 1 || lines[0].Text != "hello" {
		t.Errorf("got %v", lines)
	}

	reg.remove(inst.ID)
	if _, ok := reg.Get(inst.ID); ok {
		t.Fatal("expected instance to be removed")
	}
}

func TestInstanceWait(t *testing.T) {
	inst := newInstance("1.20.4", loader.Vanilla, "", nil)

	done := make(chan error, 1)
	go func() { done <- inst.Wait() }()

	inst.finish(nil)

	if err := <-done; err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
