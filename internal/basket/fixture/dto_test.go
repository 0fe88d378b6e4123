package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeOutput(t *testing.T, doc string) OutputDTO {
	t.Helper()
	var out OutputDTO
	require.NoError(t, yaml.Unmarshal([]byte(doc), &out))
	return out
}

func TestOutputDTOBareScalarPassThrough(t *testing.T) {
	out := decodeOutput(t, `"pass-through"`)
	assert.Equal(t, "pass_through", out.Kind)
	assert.Empty(t, out.Successor)
}

func TestOutputDTOMappingPassThroughWithSuccessor(t *testing.T) {
	out := decodeOutput(t, "pass_through: next-layer\n")
	assert.Equal(t, "pass_through", out.Kind)
	assert.Equal(t, "next-layer", out.Successor)
}

func TestOutputDTOMappingSplit(t *testing.T) {
	out := decodeOutput(t, "split:\n  participating: redeemed\n  non_participating: untouched\n")
	assert.Equal(t, "split", out.Kind)
	assert.Equal(t, "redeemed", out.Participating)
	assert.Equal(t, "untouched", out.NonParticipating)
}

func TestOutputDTORejectsUnknownScalar(t *testing.T) {
	var out OutputDTO
	err := yaml.Unmarshal([]byte(`"terminal"`), &out)
	require.Error(t, err)
}

func TestOutputDTORejectsEmptyMapping(t *testing.T) {
	var out OutputDTO
	err := yaml.Unmarshal([]byte("{}\n"), &out)
	require.Error(t, err)
}
