package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qhato/basket/internal/basket/domain"
)

// ExportLayer renders the same problem the solver builds for a layer
// as a human-readable mixed-integer program: one boolean variable per
// candidate, the savings-maximising objective, and every item/promotion
// constraint row, each annotated with the promotion and item keys it
// names. Running alongside the solver, it never changes the solution —
// it is a read-only view of the same ilpProblem.
func ExportLayer(layer domain.Layer, items []domain.Item) (string, error) {
	var bundleSeq uint32
	var allCandidates []domain.Candidate
	for _, promo := range layer.Promotions {
		candidates, err := promo.Candidates(items, domain.BudgetState{}, &bundleSeq)
		if err != nil {
			return "", err
		}
		allCandidates = append(allCandidates, candidates...)
	}

	problem := buildILPProblem(allCandidates, items, layer.Promotions, nil)

	var b strings.Builder
	fmt.Fprintf(&b, "\\* Layer %q *\\\n", layer.Key)

	if len(problem.candidates) == 0 {
		b.WriteString("\\* no candidates: layer resolves to full price for every item *\\\n")
		return b.String(), nil
	}

	b.WriteString("Maximize\n")
	var objTerms []string
	for i := range problem.candidates {
		objTerms = append(objTerms, fmt.Sprintf(" + %d x%d", problem.savings[i], i))
	}
	fmt.Fprintf(&b, " savings:%s\n\n", strings.Join(objTerms, ""))

	b.WriteString("Subject To\n")
	for _, key := range sortedKeys(problem.itemRows) {
		idxs := problem.itemRows[key]
		var terms []string
		for _, idx := range idxs {
			terms = append(terms, fmt.Sprintf("x%d", idx))
		}
		fmt.Fprintf(&b, " item_%s: %s <= 1  \\* item %q claimed by at most one candidate *\\\n", sanitize(key), strings.Join(terms, " + "), key)
	}
	for _, key := range sortedBudgetKeys(problem.appBudgetRows) {
		row := problem.appBudgetRows[key]
		var terms []string
		for i, idx := range row.candidateIdx {
			terms = append(terms, fmt.Sprintf("%d x%d", row.weight[i], idx))
		}
		fmt.Fprintf(&b, " applications_%s: %s <= %d  \\* promotion %q application budget *\\\n", sanitize(key), strings.Join(terms, " + "), row.cap, key)
	}
	for _, key := range sortedBudgetKeys(problem.monBudgetRows) {
		row := problem.monBudgetRows[key]
		var terms []string
		for i, idx := range row.candidateIdx {
			terms = append(terms, fmt.Sprintf("%d x%d", row.weight[i], idx))
		}
		fmt.Fprintf(&b, " monetary_%s: %s <= %d  \\* promotion %q monetary budget (minor units) *\\\n", sanitize(key), strings.Join(terms, " + "), row.cap, key)
	}

	b.WriteString("\nBinaries\n")
	var names []string
	for i := range problem.candidates {
		names = append(names, fmt.Sprintf("x%d", i))
	}
	fmt.Fprintf(&b, " %s\n", strings.Join(names, " "))

	b.WriteString("\nComments\n")
	for i, c := range problem.candidates {
		fmt.Fprintf(&b, " \\* x%d = promotion %q, members [%s] *\\\n", i, c.PromotionKey, strings.Join(c.MemberItemKeys, ", "))
	}

	return b.String(), nil
}

// ExportStack renders the ILP for every layer reachable from root, in
// traversal order, concatenated with headings — the document written
// when the CLI is passed -o.
func ExportStack(stack domain.Stack, itemsByLayer map[string][]domain.Item) (string, error) {
	order, err := traversalOrder(stack)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, key := range order {
		layer := stack.Nodes[key]
		doc, err := ExportLayer(layer, itemsByLayer[key])
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(doc)
	}
	return b.String(), nil
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedBudgetKeys(m map[string]budgetRow) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sanitize replaces characters that would make a poor MPS/LP row name.
func sanitize(key string) string {
	return strings.NewReplacer(" ", "_", "/", "_", ":", "_").Replace(key)
}
