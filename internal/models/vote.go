package models

import (
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// Choice is the side a client voted for. The zero value means no vote.
type Choice string

const (
	ChoiceNone   Choice = ""
	ChoiceAccept Choice = "accept"
	ChoiceReject Choice = "reject"
)

func ParseChoice(s string) (Choice, error) {
	c := Choice(s)
	if !c.Valid() {
		return ChoiceNone, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
	return c, nil
}

func (c Choice) Valid() bool {
	return c == ChoiceAccept || c == ChoiceReject
}

// VoteAggregate is the shared counter record. Writers keep Total == Accept + Reject.
type VoteAggregate struct {
	Accept int `json:"accept" mapstructure:"accept"`
	Reject int `json:"reject" mapstructure:"reject"`
	Total  int `json:"total" mapstructure:"total"`
}

func (a VoteAggregate) Consistent() bool {
	return a.Accept >= 0 && a.Reject >= 0 && a.Total == a.Accept+a.Reject
}

// With returns the aggregate after one more vote for c.
func (a VoteAggregate) With(c Choice) VoteAggregate {
	next := a
	switch c {
	case ChoiceAccept:
		next.Accept++
	case ChoiceReject:
		next.Reject++
	default:
		return a
	}
	next.Total++
	return next
}

func (a VoteAggregate) Fields() map[string]any {
	return map[string]any{
		"accept": a.Accept,
		"reject": a.Reject,
		"total":  a.Total,
	}
}

// DecodeAggregate reads an aggregate document. Redis hands back strings, so decoding is weakly typed.
// An empty document is the zero aggregate.
func DecodeAggregate(fields map[string]any) (VoteAggregate, error) {
	var agg VoteAggregate
	if len(fields) == 0 {
		return agg, nil
	}
	if err := weakDecode(fields, &agg); err != nil {
		return VoteAggregate{}, fmt.Errorf("%w: aggregate: %v", ErrMalformedSnapshot, err)
	}
	if agg.Accept < 0 || agg.Reject < 0 || agg.Total < 0 {
		return VoteAggregate{}, fmt.Errorf("%w: negative counter in %+v", ErrMalformedSnapshot, agg)
	}
	return agg, nil
}

// Percentage is round(100*part/total), 0 when nothing has been cast.
func Percentage(part int, agg VoteAggregate) int {
	if agg.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(agg.Total)))
}

// Percentages returns the accept and reject shares. For a consistent aggregate the pair sums to 100.
func Percentages(agg VoteAggregate) (accept, reject int) {
	if agg.Total <= 0 {
		return 0, 0
	}
	accept = Percentage(agg.Accept, agg)
	if !agg.Consistent() {
		return accept, Percentage(agg.Reject, agg)
	}
	return accept, 100 - accept
}

func weakDecode(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
