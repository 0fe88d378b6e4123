// Command basket is a thin, not-part-of-the-core example CLI: it loads
// a fixture, runs it through the engine, and prints (or exports) the
// result. All of the interesting behavior lives in internal/basket.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qhato/basket/config"
	"github.com/qhato/basket/internal/basket/domain"
	"github.com/qhato/basket/internal/basket/engine"
	"github.com/qhato/basket/internal/basket/fixture"
	"github.com/qhato/basket/pkg/logger"
)

func main() {
	fixturePath := flag.String("f", "", "path to a YAML fixture file")
	itemLimit := flag.Int("n", -1, "limit the number of fixture items added to the basket (-1 = all)")
	exportPath := flag.String("o", "", "write the ILP export for every layer to this path instead of processing")
	flag.Parse()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.App.Environment, cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: basket -f <fixture.yaml> [-n count] [-o export.lp]")
		os.Exit(1)
	}

	loaded, err := fixture.Load(*fixturePath)
	if err != nil {
		logger.Get().WithError(err).Error("failed to load fixture")
		os.Exit(1)
	}

	items := loaded.Items
	if *itemLimit >= 0 && *itemLimit < len(items) {
		items = items[:*itemLimit]
	}

	if *exportPath != "" {
		if err := runExport(loaded, items, *exportPath); err != nil {
			logger.Get().WithError(err).Error("failed to export ILP")
			os.Exit(1)
		}
		return
	}

	runner := engine.NewRunner(loaded.Stack)
	receipt, err := runner.Process(items)
	if err != nil {
		logger.Get().WithError(err).Error("failed to process basket")
		os.Exit(1)
	}

	printReceipt(receipt)
}

// runExport writes the ILP document for every layer in the stack to
// path, using the full fixture basket as the candidate pool for each
// layer. It does not run the solver or simulate split/pass-through
// routing between layers, so a layer downstream of a split sees more
// items here than it would during an actual Process call.
func runExport(loaded fixture.Loaded, items []domain.Item, path string) error {
	itemsByLayer := make(map[string][]domain.Item, len(loaded.Stack.Nodes))
	for key := range loaded.Stack.Nodes {
		itemsByLayer[key] = items
	}

	doc, err := engine.ExportStack(loaded.Stack, itemsByLayer)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}

// printReceipt renders a receipt as plain text: subtotal, total, each
// redemption, and any items left at full price.
func printReceipt(receipt domain.Receipt) {
	fmt.Println("Redemptions:")
	if len(receipt.Redemptions) == 0 {
		fmt.Println("  (none)")
	}
	for _, r := range receipt.Redemptions {
		label := r.BundleLabel
		if label == "" {
			label = fmt.Sprintf("bundle %d", r.BundleID)
		}
		savings, err := r.Savings()
		if err != nil {
			logger.Get().WithError(err).Error("failed to compute redemption savings")
			os.Exit(1)
		}
		fmt.Printf("  [%s] %s: %s -> %s (saved %s) via %s\n",
			r.LayerKey, r.ItemKey, r.OriginalPrice, r.FinalPrice, savings, label)
	}

	if len(receipt.FullPriceItems) > 0 {
		fmt.Println("Full price items:")
		for _, item := range receipt.FullPriceItems {
			fmt.Printf("  %s\n", item.Key)
		}
	}

	fmt.Printf("Subtotal: %s\n", receipt.Subtotal)
	fmt.Printf("Total:    %s\n", receipt.Total)
}
