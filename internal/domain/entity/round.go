package entity

import (
	"fmt"
	"math/big"
	"time"
)

// RoundData is the decoded result of a Chainlink AggregatorV3 latestRoundData()
// call. Answer is the raw signed feed value; validation (sign, staleness)
// belongs to the consumer, not the adapter.
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       time.Time
	UpdatedAt       time.Time
	AnsweredInRound *big.Int
}

// NewRoundData creates a RoundData with basic structural validation.
// A nil answer means the adapter failed to decode the response and is
// always rejected here rather than at every call site.
func NewRoundData(roundID, answer *big.Int, startedAt, updatedAt time.Time, answeredInRound *big.Int) (RoundData, error) {
	if answer == nil {
		return RoundData{}, fmt.Errorf("round answer must not be nil")
	}
	return RoundData{
		RoundID:         roundID,
		Answer:          answer,
		StartedAt:       startedAt,
		UpdatedAt:       updatedAt,
		AnsweredInRound: answeredInRound,
	}, nil
}

// LivenessState is the decoded state of an L2 sequencer uptime feed round.
// It is read fresh on every engine call and never stored.
type LivenessState struct {
	IsUp      bool
	StartedAt time.Time
}

// LivenessFromRound interprets an uptime feed round: answer 0 means the
// sequencer is up, any other value means it is down. StartedAt carries the
// time of the last status change.
func LivenessFromRound(round RoundData) LivenessState {
	return LivenessState{
		IsUp:      round.Answer.Sign() == 0,
		StartedAt: round.StartedAt,
	}
}
