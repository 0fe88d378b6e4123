package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhato/basket/internal/basket/domain"
)

func TestBranchAndBoundSelectsAllNonConflicting(t *testing.T) {
	items := []domain.Item{item("a", 1000), item("b", 500)}
	candidates := []domain.Candidate{
		candidate("p1", "a", 900),
		candidate("p1", "b", 400),
	}
	problem := buildILPProblem(candidates, items, nil, nil)

	selected, err := branchAndBound(problem)
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func TestBranchAndBoundRespectsItemCoverage(t *testing.T) {
	items := []domain.Item{item("a", 1000)}
	candidates := []domain.Candidate{
		candidate("p1", "a", 900), // saves 100
		candidate("p2", "a", 700), // saves 300, same item — mutually exclusive
	}
	problem := buildILPProblem(candidates, items, nil, nil)

	selected, err := branchAndBound(problem)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "p2", problem.candidates[selected[0]].PromotionKey)
}

func TestBranchAndBoundRespectsApplicationsBudget(t *testing.T) {
	items := []domain.Item{item("a", 1000), item("b", 1000)}
	apps := uint32(1)
	promo := domain.NewDirect("p1", domain.MatchAll(), domain.PercentageOff(domain.Percentage{}), domain.Budget{Applications: &apps})
	candidates := []domain.Candidate{
		candidate("p1", "a", 900),
		candidate("p1", "b", 900),
	}
	problem := buildILPProblem(candidates, items, []domain.Promotion{promo}, nil)

	selected, err := branchAndBound(problem)
	require.NoError(t, err)
	assert.Len(t, selected, 1)
}

func TestIsBetterTupleFewerCandidatesWins(t *testing.T) {
	assert.True(t, isBetterTuple([]int{0}, []int{0, 1}))
	assert.False(t, isBetterTuple([]int{0, 1}, []int{0}))
}

func TestIsBetterTupleLexicographicTieBreak(t *testing.T) {
	assert.True(t, isBetterTuple([]int{0, 2}, []int{0, 3}))
	assert.False(t, isBetterTuple([]int{0, 3}, []int{0, 2}))
}

func TestCeilWithTolerance(t *testing.T) {
	assert.Equal(t, int64(5), ceilWithTolerance(5.0-1e-9))
	assert.Equal(t, int64(6), ceilWithTolerance(5.5))
}
