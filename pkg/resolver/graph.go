// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resolver

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// Graph is what a consumer of a package sees: the package and everything it
// requires transitively. Build-only requirements are not part of it.
type Graph struct {
	Root  recipe.Reference `json:"root" yaml:"root"`
	Nodes []GraphNode      `json:"nodes" yaml:"nodes"`
}

// GraphNode is one package in a consumer graph with its direct
// transitive requirements.
type GraphNode struct {
	Reference recipe.Reference `json:"reference" yaml:"reference"`
	PackageID string           `json:"packageId" yaml:"packageId"`
	Requires  []string         `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// Contains reports whether a package with the given name is in the graph.
func (g *Graph) Contains(name string) bool {
	for _, n := range g.Nodes {
		if n.Reference.Name == name {
			return true
		}
	}
	return false
}

// Dependencies returns the packages a consumer receives besides the root,
// dependencies before their dependents.
func (g *Graph) Dependencies() []recipe.Reference {
	out := make([]recipe.Reference, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Reference != g.Root {
			out = append(out, n.Reference)
		}
	}
	return out
}

// ConsumerGraph walks the package manifests from ref following only
// transitive requirements, fetching missing packages from remotes.
func (r *Resolver) ConsumerGraph(ctx context.Context, ref recipe.Reference, settings recipe.Settings) (*Graph, error) {
	g := &Graph{Root: ref}
	state := make(map[string]int) // 1 visiting, 2 done

	var visit func(ref recipe.Reference, path []string) error
	visit = func(ref recipe.Reference, path []string) error {
		key := ref.String()
		switch state[key] {
		case 1:
			return errors.NewWithContext(errors.ErrCodeResolution, "dependency cycle",
				map[string]any{"path": append(slices.Clone(path), key)})
		case 2:
			return nil
		}
		state[key] = 1

		m, _, _, err := r.find(ctx, ref, settings)
		if err != nil {
			return err
		}

		node := GraphNode{Reference: ref, PackageID: m.PackageID}
		childPath := append(slices.Clone(path), key)
		for _, req := range m.Requires {
			if req.Scope != recipe.ScopeTransitive {
				continue
			}
			dep, err := req.Reference()
			if err != nil {
				return errors.Wrap(errors.ErrCodeResolution, fmt.Sprintf("%s has an invalid requirement", key), err)
			}
			if err := visit(dep, childPath); err != nil {
				return err
			}
			node.Requires = append(node.Requires, dep.String())
		}
		sort.Strings(node.Requires)

		state[key] = 2
		g.Nodes = append(g.Nodes, node)
		return nil
	}

	if err := visit(ref, nil); err != nil {
		return nil, err
	}
	return g, nil
}
