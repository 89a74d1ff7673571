package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/pkg/types"
)

func TestValidateReturnsPublishingOrder(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("app", map[string]types.Range{"lib": "^1.0.0"}, nil, nil),
		descriptor("lib", nil, nil, nil),
	}

	result, err := Validate(repos, ValidateOptions{ThrowOnProductionCycles: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib", "app"}, result.PublishingOrder)
	assert.Empty(t, result.ProductionCycles)
	assert.NoError(t, result.SortError)
}

func TestValidateThrowsOnProductionCycle(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("a", map[string]types.Range{"b": "^1.0.0"}, nil, nil),
		descriptor("b", map[string]types.Range{"a": "^1.0.0"}, nil, nil),
	}

	_, err := Validate(repos, ValidateOptions{ThrowOnProductionCycles: true})
	assert.Error(t, err)
}

func TestValidateToleratesProductionCycleWhenNotThrowing(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("a", map[string]types.Range{"b": "^1.0.0"}, nil, nil),
		descriptor("b", map[string]types.Range{"a": "^1.0.0"}, nil, nil),
	}

	result, err := Validate(repos, ValidateOptions{ThrowOnProductionCycles: false})
	require.NoError(t, err)
	assert.Len(t, result.ProductionCycles, 1)
	assert.Error(t, result.SortError, "an uncleared production cycle still prevents a full sort")
}

func TestValidateToleratesDevCycle(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("a", nil, nil, map[string]types.Range{"b": "^1.0.0"}),
		descriptor("b", nil, nil, map[string]types.Range{"a": "^1.0.0"}),
	}

	result, err := Validate(repos, ValidateOptions{ThrowOnProductionCycles: true})
	require.NoError(t, err)
	assert.Len(t, result.DevCycles, 1)
	assert.NoError(t, result.SortError, "dev cycles don't block an excludeDev sort")
}
