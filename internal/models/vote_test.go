package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChoice(t *testing.T) {
	c, err := ParseChoice("accept")
	require.NoError(t, err)
	assert.Equal(t, ChoiceAccept, c)

	_, err = ParseChoice("maybe")
	assert.ErrorIs(t, err, ErrInvalidChoice)

	_, err = ParseChoice("")
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

func TestAggregateWith(t *testing.T) {
	start := VoteAggregate{Accept: 3, Reject: 2, Total: 5}

	next := start.With(ChoiceReject)
	assert.Equal(t, VoteAggregate{Accept: 3, Reject: 3, Total: 6}, next)
	assert.Equal(t, 50, Percentage(next.Accept, next))
	assert.Equal(t, 50, Percentage(next.Reject, next))

	assert.Equal(t, VoteAggregate{Accept: 4, Reject: 2, Total: 6}, start.With(ChoiceAccept))
	assert.Equal(t, start, start.With(ChoiceNone))
}

func TestPercentageZeroTotal(t *testing.T) {
	var zero VoteAggregate
	assert.Equal(t, 0, Percentage(0, zero))
	accept, reject := Percentages(zero)
	assert.Equal(t, 0, accept)
	assert.Equal(t, 0, reject)
}

func TestPercentagesAlwaysSumTo100(t *testing.T) {
	agg := VoteAggregate{}
	choices := []Choice{ChoiceAccept, ChoiceReject, ChoiceReject, ChoiceAccept, ChoiceReject, ChoiceReject, ChoiceReject}
	for i := 0; i < 200; i++ {
		agg = agg.With(choices[i%len(choices)])
		accept, reject := Percentages(agg)
		require.Equal(t, 100, accept+reject, "aggregate %+v", agg)
		require.GreaterOrEqual(t, accept, 0)
		require.GreaterOrEqual(t, reject, 0)
	}

	// 1/8 rounds to 13 on its own; the complement keeps the pair at 100.
	accept, reject := Percentages(VoteAggregate{Accept: 1, Reject: 7, Total: 8})
	assert.Equal(t, 13, accept)
	assert.Equal(t, 87, reject)
}

func TestDecodeAggregate(t *testing.T) {
	agg, err := DecodeAggregate(map[string]any{"accept": "3", "reject": "2", "total": "5"})
	require.NoError(t, err)
	assert.Equal(t, VoteAggregate{Accept: 3, Reject: 2, Total: 5}, agg)

	agg, err = DecodeAggregate(map[string]any{"accept": 1, "reject": 0, "total": 1})
	require.NoError(t, err)
	assert.Equal(t, VoteAggregate{Accept: 1, Total: 1}, agg)

	agg, err = DecodeAggregate(nil)
	require.NoError(t, err)
	assert.Equal(t, VoteAggregate{}, agg)

	_, err = DecodeAggregate(map[string]any{"accept": "lots"})
	assert.ErrorIs(t, err, ErrMalformedSnapshot)

	_, err = DecodeAggregate(map[string]any{"accept": -1, "total": -1})
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}
