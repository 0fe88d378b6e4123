package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhato/basket/internal/basket/domain"
	apperrors "github.com/qhato/basket/pkg/errors"
)

func TestStackBuilderValidGraph(t *testing.T) {
	builder := NewStackBuilder("root")
	builder.AddLayer(domain.NewLayer("root", domain.PassThrough("leaf"), nil))
	builder.AddLayer(domain.NewLayer("leaf", domain.PassThrough(""), nil))

	stack, err := builder.Build()
	require.NoError(t, err)
	assert.Equal(t, "root", stack.RootKey)
	assert.Len(t, stack.Nodes, 2)
}

func TestStackBuilderDetectsCycle(t *testing.T) {
	builder := NewStackBuilder("a")
	builder.AddLayer(domain.NewLayer("a", domain.PassThrough("b"), nil))
	builder.AddLayer(domain.NewLayer("b", domain.PassThrough("a"), nil))

	_, err := builder.Build()
	require.Error(t, err)
	assertInvalidStack(t, err)
}

func TestStackBuilderDetectsUnknownSuccessor(t *testing.T) {
	builder := NewStackBuilder("a")
	builder.AddLayer(domain.NewLayer("a", domain.PassThrough("ghost"), nil))

	_, err := builder.Build()
	require.Error(t, err)
	assertInvalidStack(t, err)
}

func TestStackBuilderDetectsUnreachableLayer(t *testing.T) {
	builder := NewStackBuilder("a")
	builder.AddLayer(domain.NewLayer("a", domain.PassThrough(""), nil))
	builder.AddLayer(domain.NewLayer("orphan", domain.PassThrough(""), nil))

	_, err := builder.Build()
	require.Error(t, err)
	assertInvalidStack(t, err)
}

func TestStackBuilderAggregatesMultipleProblems(t *testing.T) {
	builder := NewStackBuilder("a")
	builder.AddLayer(domain.NewLayer("a", domain.PassThrough("ghost"), nil))
	builder.AddLayer(domain.NewLayer("orphan", domain.PassThrough(""), nil))

	_, err := builder.Build()
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(appErr.Details), 2)
}

func TestStackBuilderAcceptsSplitWithEqualTargets(t *testing.T) {
	builder := NewStackBuilder("a")
	builder.AddLayer(domain.NewLayer("a", domain.Split("b", "b"), nil))
	builder.AddLayer(domain.NewLayer("b", domain.PassThrough(""), nil))

	_, err := builder.Build()
	require.NoError(t, err, "equal split targets are legal, only warned about")
}

func assertInvalidStack(t *testing.T, err error) {
	t.Helper()
	code, ok := apperrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STACK", string(code))
}
