// Package engine hosts everything that turns a validated domain.Stack
// into redemptions: graph validation, the per-layer optimising solver,
// the ILP export, and the graph runner that ties them together.
package engine

import (
	"sort"
	"strconv"

	"github.com/qhato/basket/internal/basket/domain"
	apperrors "github.com/qhato/basket/pkg/errors"
	"github.com/qhato/basket/pkg/logger"
)

// StackBuilder assembles a domain.Stack from layers added incrementally,
// validating the whole graph once at Build time. Layers and promotions
// are otherwise immutable once built.
type StackBuilder struct {
	rootKey string
	nodes   map[string]domain.Layer
	log     *logger.Logger
}

// NewStackBuilder constructs an empty builder rooted at rootKey.
func NewStackBuilder(rootKey string) *StackBuilder {
	return &StackBuilder{
		rootKey: rootKey,
		nodes:   make(map[string]domain.Layer),
		log:     logger.Get().WithField("component", "stack_builder"),
	}
}

// AddLayer registers a layer under its own key, overwriting any prior
// layer registered under the same key.
func (b *StackBuilder) AddLayer(layer domain.Layer) *StackBuilder {
	b.nodes[layer.Key] = layer
	return b
}

// Build validates the accumulated graph and returns the immutable Stack.
// Every structural problem is collected into a single InvalidStack error
// rather than stopping at the first one found, so a fixture author sees
// the whole picture in one pass (a deliberate improvement over
// stop-at-first-error validation — see DESIGN.md).
func (b *StackBuilder) Build() (domain.Stack, error) {
	var problems []string

	if len(b.nodes) == 0 {
		problems = append(problems, "stack must contain at least one layer")
	}
	if _, ok := b.nodes[b.rootKey]; !ok && len(b.nodes) > 0 {
		problems = append(problems, "root layer \""+b.rootKey+"\" is not a registered node")
	}

	problems = append(problems, validateSuccessors(b.nodes)...)
	problems = append(problems, validateAcyclic(b.rootKey, b.nodes)...)
	warnSplitEqualTargets(b.nodes, b.log)

	if len(problems) > 0 {
		err := apperrors.InvalidStack("stack failed validation")
		for i, p := range problems {
			err = err.WithDetail(detailKey(i), p)
		}
		return domain.Stack{}, err
	}

	stack := domain.Stack{RootKey: b.rootKey, Nodes: b.nodes}
	b.log.WithFields(logger.Fields{"layers": len(b.nodes), "root": b.rootKey}).Info("stack built")
	return stack, nil
}

func detailKey(i int) string {
	return "problem_" + strconv.Itoa(i)
}

// validateSuccessors ensures every PassThrough/Split target names a
// registered layer (a blank target on a terminal PassThrough is allowed).
func validateSuccessors(nodes map[string]domain.Layer) []string {
	var problems []string
	keys := sortedLayerKeys(nodes)
	for _, key := range keys {
		layer := nodes[key]
		switch layer.Output.Kind {
		case domain.OutputPassThrough:
			if layer.Output.SuccessorKey != "" {
				if _, ok := nodes[layer.Output.SuccessorKey]; !ok {
					problems = append(problems, "layer \""+key+"\" routes to unknown successor \""+layer.Output.SuccessorKey+"\"")
				}
			}
		case domain.OutputSplit:
			if _, ok := nodes[layer.Output.ParticipatingKey]; !ok {
				problems = append(problems, "layer \""+key+"\" splits to unknown participating target \""+layer.Output.ParticipatingKey+"\"")
			}
			if _, ok := nodes[layer.Output.NonParticipatingKey]; !ok {
				problems = append(problems, "layer \""+key+"\" splits to unknown non-participating target \""+layer.Output.NonParticipatingKey+"\"")
			}
		}
	}
	return problems
}

// validateAcyclic walks the graph from root with a recursion-stack DFS,
// reporting a cycle if any node is revisited while still on the stack.
// Unreachable layers are reported too, since an unreachable layer can
// never route or receive items and is almost certainly a fixture bug.
func validateAcyclic(rootKey string, nodes map[string]domain.Layer) []string {
	var problems []string
	if _, ok := nodes[rootKey]; !ok {
		return problems
	}

	visited := make(map[string]bool, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var cyclic bool

	var visit func(key string)
	visit = func(key string) {
		if cyclic {
			return
		}
		if onStack[key] {
			cyclic = true
			return
		}
		if visited[key] {
			return
		}
		visited[key] = true
		onStack[key] = true
		for _, succ := range successors(nodes[key]) {
			visit(succ)
		}
		onStack[key] = false
	}
	visit(rootKey)
	if cyclic {
		problems = append(problems, "stack graph contains a cycle reachable from root")
	}

	keys := sortedLayerKeys(nodes)
	for _, key := range keys {
		if !visited[key] {
			problems = append(problems, "layer \""+key+"\" is unreachable from root")
		}
	}
	return problems
}

// warnSplitEqualTargets logs (never rejects) a Split layer whose two
// targets are equal — legal, equivalent to PassThrough, but almost
// certainly not what the fixture author intended.
func warnSplitEqualTargets(nodes map[string]domain.Layer, log *logger.Logger) {
	for _, key := range sortedLayerKeys(nodes) {
		layer := nodes[key]
		if layer.Output.Kind == domain.OutputSplit && layer.Output.ParticipatingKey == layer.Output.NonParticipatingKey {
			log.WithFields(logger.Fields{"layer": key, "target": layer.Output.ParticipatingKey}).
				Warn("split layer has identical participating/non-participating targets, behaves as pass-through")
		}
	}
}

func successors(layer domain.Layer) []string {
	switch layer.Output.Kind {
	case domain.OutputPassThrough:
		if layer.Output.SuccessorKey == "" {
			return nil
		}
		return []string{layer.Output.SuccessorKey}
	case domain.OutputSplit:
		return []string{layer.Output.ParticipatingKey, layer.Output.NonParticipatingKey}
	default:
		return nil
	}
}

func sortedLayerKeys(nodes map[string]domain.Layer) []string {
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
