package catalogue

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllTags_DedupesAndSorts(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Problems().Put(ctx, &models.Problem{ProblemID: "p1", LeetCodeID: 1, Tags: []string{"Graph", "Array"}}))
	require.NoError(t, s.Problems().Put(ctx, &models.Problem{ProblemID: "p2", LeetCodeID: 2, Tags: []string{"Array", "Dynamic Programming"}}))

	tags, err := New(s).AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Array", "Dynamic Programming", "Graph"}, tags)
}

func TestAllTags_EmptyCatalogueReturnsEmpty(t *testing.T) {
	s := memstore.New()
	tags, err := New(s).AllTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
}
