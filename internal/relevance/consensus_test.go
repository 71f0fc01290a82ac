package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

func checkerAnswering(answer string) Checker {
	return newGatedChecker(&stubProvider{answer: answer}, 5, 0)
}

func TestConsensusStrictMajority(t *testing.T) {
	ctx := context.Background()

	twoOfThree := NewConsensusChecker([]Checker{
		checkerAnswering("Yes"), checkerAnswering("Yes"), checkerAnswering("No"),
	})
	assert.True(t, twoOfThree.CheckRelevance(ctx, "Heatwave", "", "Rajasthan", ""))

	oneOfThree := NewConsensusChecker([]Checker{
		checkerAnswering("Yes"), checkerAnswering("No"), checkerAnswering("No"),
	})
	assert.False(t, oneOfThree.CheckRelevance(ctx, "Heatwave", "", "Rajasthan", ""))

	// An even split is NOT a strict majority
	oneOfTwo := NewConsensusChecker([]Checker{
		checkerAnswering("Yes"), checkerAnswering("No"),
	})
	assert.False(t, oneOfTwo.CheckRelevance(ctx, "Heatwave", "", "Rajasthan", ""))
}

func TestConsensusErroringCheckerVotesYes(t *testing.T) {
	// A failed sub-checker fails open, which counts as a yes vote
	failing := newGatedChecker(&stubProvider{err: errors.New("boom")}, 1, 0)
	consensus := NewConsensusChecker([]Checker{failing, checkerAnswering("Yes"), checkerAnswering("No")})
	assert.True(t, consensus.CheckRelevance(context.Background(), "Heatwave", "", "Rajasthan", ""))
}

func TestConsensusFilterRefs(t *testing.T) {
	consensus := NewConsensusChecker([]Checker{
		checkerAnswering("No"), checkerAnswering("No"), checkerAnswering("Yes"),
	})
	refs := []models.ArticleRef{makeRef(t, "a"), makeRef(t, "b")}
	assert.Empty(t, consensus.FilterRefs(context.Background(), refs))
}

func TestConsensusDistrictDelegatesToFirst(t *testing.T) {
	first := newGatedChecker(&stubProvider{answer: "Jaipur"}, 1, 0)
	second := newGatedChecker(&stubProvider{answer: "Jodhpur"}, 1, 0)
	consensus := NewConsensusChecker([]Checker{first, second})

	district := consensus.ExtractDistrict(context.Background(), "T", "", "Rajasthan",
		[]string{"Jaipur", "Jodhpur"})
	assert.Equal(t, "Jaipur", district)
}

func TestConsensusCloseClosesAll(t *testing.T) {
	p1 := &stubProvider{answer: "Yes"}
	p2 := &stubProvider{answer: "Yes"}
	consensus := NewConsensusChecker([]Checker{
		newGatedChecker(p1, 1, 0),
		newGatedChecker(p2, 1, 0),
	})
	consensus.Close()
	assert.True(t, p1.closed)
	assert.True(t, p2.closed)
}

func TestConsensusRunsAllCheckers(t *testing.T) {
	p1 := &stubProvider{answer: "Yes"}
	p2 := &stubProvider{answer: "No"}
	p3 := &stubProvider{answer: "Yes"}
	consensus := NewConsensusChecker([]Checker{
		newGatedChecker(p1, 1, 0),
		newGatedChecker(p2, 1, 0),
		newGatedChecker(p3, 1, 0),
	})
	require.True(t, consensus.CheckRelevance(context.Background(), "T", "", "S", ""))
	assert.Equal(t, 1, p1.calls)
	assert.Equal(t, 1, p2.calls)
	assert.Equal(t, 1, p3.calls)
}
