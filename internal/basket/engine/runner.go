package engine

import (
	"github.com/qhato/basket/internal/basket/domain"
	apperrors "github.com/qhato/basket/pkg/errors"
	"github.com/qhato/basket/pkg/logger"
)

// Runner traverses a built Stack, routing items through its layers and
// accumulating the redemptions that become a Receipt. One Runner call
// is one process() invocation: its budget tracker and effective-price
// map are confined to that call and shared with nothing else.
type Runner struct {
	stack domain.Stack
	log   *logger.Logger
}

// NewRunner wraps a validated Stack for repeated process() calls.
func NewRunner(stack domain.Stack) *Runner {
	return &Runner{stack: stack, log: logger.Get().WithField("component", "runner")}
}

type queueEntry struct {
	layerKey string
	itemKeys []string
}

// Process traverses the graph from root, applying each layer's solver
// in turn and routing items per the layer's Output, then assembles the
// receipt. Its only I/O is debug-level log lines through pkg/logger (one
// per ILP-solved layer, one on completion); deterministic given
// identical items and an identically-built stack.
func (r *Runner) Process(items []domain.Item) (domain.Receipt, error) {
	if _, ok := r.stack.Nodes[r.stack.RootKey]; !ok {
		return domain.Receipt{}, apperrors.InvalidStack("root layer not found in stack")
	}

	tracker := domain.NewBudgetTracker(allPromotions(r.stack))
	effective := make(map[string]domain.Item, len(items))
	var allKeys []string
	for _, it := range items {
		effective[it.Key] = it
		allKeys = append(allKeys, it.Key)
	}

	var redemptions []domain.Redemption
	queue := []queueEntry{{layerKey: r.stack.RootKey, itemKeys: allKeys}}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]
		if len(entry.itemKeys) == 0 {
			continue
		}
		layer, ok := r.stack.Nodes[entry.layerKey]
		if !ok {
			return domain.Receipt{}, apperrors.InvalidStack("routed to unknown layer " + entry.layerKey)
		}

		layerItems := make([]domain.Item, 0, len(entry.itemKeys))
		for _, k := range entry.itemKeys {
			layerItems = append(layerItems, effective[k])
		}

		apps, err := Solve(layer, layerItems, tracker)
		if err != nil {
			return domain.Receipt{}, err
		}

		participating := make(map[string]bool, len(apps))
		for _, app := range apps {
			for _, key := range app.MemberItemKeys {
				original := effective[key]
				final := app.FinalPrice[key]
				redemptions = append(redemptions, domain.Redemption{
					PromotionKey:  app.PromotionKey,
					ItemKey:       key,
					BundleID:      app.BundleID,
					LayerKey:      app.LayerKey,
					OriginalPrice: original.Price,
					FinalPrice:    final,
					BundleLabel:   app.BundleLabel,
				})
				effective[key] = original.WithPrice(final)
				participating[key] = true
			}
		}

		switch layer.Output.Kind {
		case domain.OutputPassThrough:
			if layer.Output.SuccessorKey != "" {
				queue = append(queue, queueEntry{layerKey: layer.Output.SuccessorKey, itemKeys: entry.itemKeys})
			}
		case domain.OutputSplit:
			var part, nonPart []string
			for _, k := range entry.itemKeys {
				if participating[k] {
					part = append(part, k)
				} else {
					nonPart = append(nonPart, k)
				}
			}
			queue = append(queue,
				queueEntry{layerKey: layer.Output.ParticipatingKey, itemKeys: part},
				queueEntry{layerKey: layer.Output.NonParticipatingKey, itemKeys: nonPart},
			)
		}
	}

	r.log.WithField("redemptions", len(redemptions)).Debug("process complete")
	return domain.NewReceipt(items, redemptions)
}

func allPromotions(stack domain.Stack) []domain.Promotion {
	var all []domain.Promotion
	for _, key := range sortedLayerKeys(stack.Nodes) {
		all = append(all, stack.Nodes[key].Promotions...)
	}
	return all
}

// traversalOrder returns every layer reachable from root in breadth-first
// discovery order, used by ExportStack to concatenate layer documents in
// traversal order.
func traversalOrder(stack domain.Stack) ([]string, error) {
	if _, ok := stack.Nodes[stack.RootKey]; !ok {
		return nil, apperrors.InvalidStack("root layer not found in stack")
	}
	visited := make(map[string]bool, len(stack.Nodes))
	var order []string
	queue := []string{stack.RootKey}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		visited[key] = true
		order = append(order, key)
		for _, succ := range successors(stack.Nodes[key]) {
			if succ != "" && !visited[succ] {
				queue = append(queue, succ)
			}
		}
	}
	return order, nil
}
