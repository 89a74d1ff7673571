package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
)

func descriptor(name string, prod, peer, dev map[string]types.Range) *repository.Descriptor {
	return &repository.Descriptor{
		Name:        name,
		Version:     semver.MustParse("1.0.0"),
		Prod:        prod,
		Peer:        peer,
		Dev:         dev,
		Publishable: true,
	}
}

func TestBuildOmitsExternalEdges(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("app", map[string]types.Range{"lib": "^1.0.0", "left-pad": "^2.0.0"}, nil, nil),
		descriptor("lib", nil, nil, nil),
	}

	g, _ := Build(repos)
	require.Len(t, g.Nodes, 2)
	assert.Contains(t, g.Nodes["app"].Deps, "lib")
	assert.NotContains(t, g.Nodes["app"].Deps, "left-pad")
	assert.True(t, g.Nodes["lib"].Dependents["app"])
}

func TestBuildPrecedenceProdOverPeerOverDev(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("app", map[string]types.Range{"lib": "^1.0.0"}, map[string]types.Range{"lib": "^2.0.0"}, map[string]types.Range{"lib": "^3.0.0"}),
		descriptor("lib", nil, nil, nil),
	}

	g, _ := Build(repos)
	assert.Equal(t, types.Prod, g.Nodes["app"].Deps["lib"].Kind)
}

func TestBuildWarnsOnWildcardAndExternalPeer(t *testing.T) {
	repos := []*repository.Descriptor{
		descriptor("app", map[string]types.Range{"lib": "*"}, map[string]types.Range{"external": "^1.0.0"}, nil),
		descriptor("lib", nil, nil, nil),
	}

	_, warnings := Build(repos)
	assert.Contains(t, joinWarnings(warnings), "wildcard")
	assert.Contains(t, joinWarnings(warnings), "external to the repository set")
}

func joinWarnings(warnings []string) string {
	out := ""
	for _, w := range warnings {
		out += w + "\n"
	}
	return out
}
