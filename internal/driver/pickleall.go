package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/project"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/symbols"
	"github.com/skvithalani/dotty/internal/tasty"
	"github.com/skvithalani/dotty/internal/transform"
)

// Unit is one independently compilable input: its own arena, its own
// interner, its own top-level trees. Units share nothing mutable, which is
// what makes the parallel pass below safe — each goroutine builds a private
// symbol table.
type Unit struct {
	Name    string
	Path    string
	File    source.FileID
	Strings *source.Interner
	Arena   *ast.Arena
	Roots   []ast.NodeID
}

// UnitResult is the outcome for one unit. Err is set when pickling itself
// failed; diagnostics from naming and transformation land in Bag either way.
type UnitResult struct {
	Name   string
	Bag    *diag.Bag
	Data   []byte
	Digest project.Digest
	Err    error
}

// Options tunes the parallel pass.
type Options struct {
	Jobs           int  // worker cap; <=0 means GOMAXPROCS
	MaxDiagnostics int  // per-unit bag capacity
	Compact        bool // run address compaction before assembly
}

// OptionsFromConfig maps the manifest settings onto pass options. Jobs has
// no manifest knob and keeps its GOMAXPROCS default.
func OptionsFromConfig(cfg project.Config) Options {
	return Options{
		MaxDiagnostics: cfg.Diagnostics.Max,
		Compact:        cfg.Pickler.Compact,
	}
}

// PickleUnits indexes, transforms, and pickles every unit in parallel.
// Results keep the input order. The returned error is a cancellation or
// other group-level failure; per-unit failures stay in their result.
func PickleUnits(ctx context.Context, units []Unit, opts Options) ([]UnitResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]UnitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(units), 1)))

	for i, unit := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = pickleOne(unit, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// pickleOne runs the whole front-end pipeline for a single unit against a
// fresh table.
func pickleOne(unit Unit, opts Options) UnitResult {
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}
	res := UnitResult{Name: unit.Name, Bag: bag}

	tbl := symbols.NewTable(symbols.Hints{}, unit.Strings, nil, reporter)
	indexed := symbols.NewNamer(tbl, unit.Arena, nil).IndexFile(unit.File, unit.Roots)

	transform.New(tbl, unit.Arena, reporter, unit.Path).
		TransformFile(indexed.RootScope, unit.Roots)

	p := tasty.NewPickler(tbl, unit.Arena, reporter)
	if err := p.Pickle(unit.Roots); err != nil {
		res.Err = fmt.Errorf("%s: %w", unit.Name, err)
		return res
	}
	data, err := p.Bytes(opts.Compact)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", unit.Name, err)
		return res
	}
	res.Data = data
	res.Digest = project.HashBytes(data)
	return res
}
