// Package domain contains the core domain models of the build: targets, their dependency graph and build tasks.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Attributes are the include directories and preprocessor definitions of a target.
type Attributes struct {
	IncludeDirs []string
	Definitions []string
}

// Graph holds the loaded targets and their dependency edges.
type Graph struct {
	targets    map[InternedString]*Target
	order      []InternedString
	topo       []InternedString
	unresolved map[InternedString]struct{}
	resolved   bool
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		targets:    make(map[InternedString]*Target),
		unresolved: make(map[InternedString]struct{}),
	}
}

// AddTargets appends targets to the graph.
// Nothing is added if any target is invalid or collides with an existing name.
func (g *Graph) AddTargets(targets ...*Target) error {
	seen := make(map[InternedString]struct{}, len(targets))
	for _, t := range targets {
		if err := t.Validate(); err != nil {
			return err
		}
		_, loaded := g.targets[t.Name]
		_, dup := seen[t.Name]
		if loaded || dup {
			return zerr.With(ErrDuplicateTarget, "target", t.Name.String())
		}
		seen[t.Name] = struct{}{}
	}

	for _, t := range targets {
		g.targets[t.Name] = t
		g.order = append(g.order, t.Name)
	}
	g.resolved = false
	return nil
}

// Len returns the number of loaded targets.
func (g *Graph) Len() int {
	return len(g.order)
}

// Target returns the target with the given name.
func (g *Graph) Target(name InternedString) (*Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// Targets yields targets in the order they were added.
func (g *Graph) Targets() iter.Seq[*Target] {
	return func(yield func(*Target) bool) {
		for _, name := range g.order {
			if !yield(g.targets[name]) {
				return
			}
		}
	}
}

// Resolve walks every target's dependencies depth-first.
// It fails on a cycle and records dependencies that are not loaded.
// Resolve may be called again after more targets were added.
func (g *Graph) Resolve() error {
	g.resolved = false
	g.topo = make([]InternedString, 0, len(g.order))
	g.unresolved = make(map[InternedString]struct{})
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.targets[u].Dependencies {
			if _, exists := g.targets[dep]; !exists {
				g.unresolved[dep] = struct{}{}
				continue
			}
			switch visited[dep] {
			case 1:
				return buildCycleError(path, dep)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.topo = append(g.topo, u)
		return nil
	}

	for _, name := range g.order {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	g.resolved = true
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	names := make([]string, 0, len(path)-start+1)
	for _, node := range path[start:] {
		names = append(names, node.String())
	}
	names = append(names, dep.String())
	return zerr.With(ErrCyclicDependency, "cycle", strings.Join(names, " -> "))
}

// UnresolvedDependencies returns the sorted names referenced by some target but never loaded.
// It reflects the most recent Resolve.
func (g *Graph) UnresolvedDependencies() []string {
	names := make([]string, 0, len(g.unresolved))
	for name := range g.unresolved {
		names = append(names, name.String())
	}
	slices.Sort(names)
	return names
}

// TopologicalOrder returns target names so that every target follows its dependencies.
func (g *Graph) TopologicalOrder() []InternedString {
	return slices.Clone(g.topo)
}

// Propagate computes every target's effective attributes.
// Each target sees its own public and private attributes followed by the public
// attributes of all its transitive dependencies. Private attributes never leave their target.
func (g *Graph) Propagate() (map[InternedString]Attributes, error) {
	if !g.resolved {
		return nil, ErrGraphNotResolved
	}
	if len(g.unresolved) > 0 {
		return nil, zerr.With(ErrUnresolvedDependency, "dependencies", g.UnresolvedDependencies())
	}

	public := make(map[InternedString]Attributes, len(g.topo))
	effective := make(map[InternedString]Attributes, len(g.topo))

	for _, name := range g.topo {
		t := g.targets[name]

		var inherited Attributes
		for _, dep := range t.Dependencies {
			inherited.IncludeDirs = appendUnique(inherited.IncludeDirs, public[dep].IncludeDirs...)
			inherited.Definitions = appendUnique(inherited.Definitions, public[dep].Definitions...)
		}

		public[name] = Attributes{
			IncludeDirs: appendUnique(appendUnique(nil, t.IncludeDirs...), inherited.IncludeDirs...),
			Definitions: appendUnique(appendUnique(nil, t.Definitions...), inherited.Definitions...),
		}

		var eff Attributes
		eff.IncludeDirs = appendUnique(eff.IncludeDirs, t.IncludeDirs...)
		eff.IncludeDirs = appendUnique(eff.IncludeDirs, t.PrivateIncludeDirs...)
		eff.IncludeDirs = appendUnique(eff.IncludeDirs, inherited.IncludeDirs...)
		eff.Definitions = appendUnique(eff.Definitions, t.Definitions...)
		eff.Definitions = appendUnique(eff.Definitions, t.PrivateDefinitions...)
		eff.Definitions = appendUnique(eff.Definitions, inherited.Definitions...)
		effective[name] = eff
	}

	return effective, nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
