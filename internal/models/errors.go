package models

import "errors"

// Stage failure kinds. Stages never propagate these to the caller; they are
// recorded on the StageOutcome so a degraded state is still attributable.
var (
	ErrExtraction = errors.New("extraction failed")
	ErrScoring    = errors.New("scoring failed")
	ErrParse      = errors.New("no JSON value found")
	ErrSchema     = errors.New("recovered JSON has wrong shape")
	ErrUpstream   = errors.New("upstream service failed")
)

// StageOutcome describes how a single stage invocation ended. A zero Err
// means the stage completed with its real output; otherwise the stage wrote
// safe defaults and Err carries one of the kinds above.
type StageOutcome struct {
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

func (o StageOutcome) Degraded() bool {
	return o.Err != nil
}
