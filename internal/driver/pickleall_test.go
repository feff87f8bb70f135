package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/project"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/tasty"
)

// testUnit builds a self-contained unit holding `val <name> = <value>`.
func testUnit(name string, value int32) Unit {
	strings := source.NewInterner()
	arena := ast.NewArena(0)
	sp := source.Span{File: source.FileID(1)}
	val := arena.ValDef(sp, strings.Intern(name), flags.Empty,
		ast.NoNodeID, arena.Literal(sp, ast.IntConstant(value)))
	return Unit{
		Name:    name,
		Path:    name + ".dt",
		File:    source.FileID(1),
		Strings: strings,
		Arena:   arena,
		Roots:   []ast.NodeID{val},
	}
}

func TestPickleUnitsProducesReadableArtifacts(t *testing.T) {
	units := []Unit{testUnit("alpha", 1), testUnit("beta", 2), testUnit("gamma", 3)}

	results, err := PickleUnits(context.Background(), units, Options{
		Jobs:           2,
		MaxDiagnostics: 16,
		Compact:        true,
	})
	if err != nil {
		t.Fatalf("PickleUnits: %v", err)
	}
	if len(results) != len(units) {
		t.Fatalf("got %d results, want %d", len(results), len(units))
	}

	for i, res := range results {
		if res.Name != units[i].Name {
			t.Fatalf("result %d is %q, want %q", i, res.Name, units[i].Name)
		}
		if res.Err != nil {
			t.Fatalf("%s: %v", res.Name, res.Err)
		}
		if res.Bag.HasErrors() {
			t.Fatalf("%s: unexpected diagnostics %v", res.Name, res.Bag.Items())
		}
		if res.Digest.IsZero() {
			t.Fatalf("%s: digest not computed", res.Name)
		}
		u, err := tasty.NewUnpickler(res.Data)
		if err != nil {
			t.Fatalf("%s: artifact does not parse: %v", res.Name, err)
		}
		roots, err := u.Roots()
		if err != nil {
			t.Fatalf("%s: decoding roots: %v", res.Name, err)
		}
		if len(roots) != 1 || roots[0].Tag != tasty.VALDEF {
			t.Fatalf("%s: unexpected root shape %v", res.Name, roots)
		}
		if roots[0].Name != units[i].Name {
			t.Fatalf("%s: root named %q", res.Name, roots[0].Name)
		}
	}
}

func TestPickleUnitsDigestsDiffer(t *testing.T) {
	units := []Unit{testUnit("x", 1), testUnit("x", 2)}

	results, err := PickleUnits(context.Background(), units, Options{MaxDiagnostics: 4})
	if err != nil {
		t.Fatalf("PickleUnits: %v", err)
	}
	if results[0].Digest == results[1].Digest {
		t.Fatalf("different content must hash differently")
	}
}

func TestOptionsFromConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, project.ManifestName)
	if err := os.WriteFile(manifest, []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	m, ok, err := project.LoadManifest(dir)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	opts := OptionsFromConfig(m.Config)
	if !opts.Compact {
		t.Fatalf("compaction must default on")
	}
	if opts.MaxDiagnostics != project.DefaultConfig.Diagnostics.Max {
		t.Fatalf("MaxDiagnostics: got %d, want default %d",
			opts.MaxDiagnostics, project.DefaultConfig.Diagnostics.Max)
	}
	if opts.Jobs != 0 {
		t.Fatalf("Jobs must stay unset, got %d", opts.Jobs)
	}
}

func TestOptionsFromConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, project.ManifestName)
	content := "[package]\nname = \"demo\"\n\n[pickler]\ncompact = false\n\n[diagnostics]\nmax = 7\n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	m, ok, err := project.LoadManifest(dir)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	opts := OptionsFromConfig(m.Config)
	if opts.Compact {
		t.Fatalf("compaction must honor the manifest override")
	}
	if opts.MaxDiagnostics != 7 {
		t.Fatalf("MaxDiagnostics: got %d, want 7", opts.MaxDiagnostics)
	}
}

func TestPickleUnitsHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	units := []Unit{testUnit("a", 1), testUnit("b", 2)}
	if _, err := PickleUnits(ctx, units, Options{Jobs: 1, MaxDiagnostics: 4}); err == nil {
		t.Fatalf("cancelled context must surface an error")
	}
}
