package workflow

import "github.com/jonathan/star-coach/internal/types"

// StarOrder is the STAR section order.
var StarOrder = Order{Situation, Task, Action, Result, Complete}

// Star returns the STAR interview-answer workflow.
func Star() Workflow[types.StarAnswer, types.StarUpdates] {
	return Workflow[types.StarAnswer, types.StarUpdates]{
		Name:       types.WorkflowStar,
		Order:      StarOrder,
		UpdatesKey: "starUpdates",
		Empty:      types.NewStarAnswer,
		Merge:      types.StarAnswer.Apply,
		Clone:      func(s types.StarAnswer) types.StarAnswer { return s },
		Derive:     DeriveStar,
	}
}

// DeriveStar returns the first STAR element still missing, or Complete.
// Each element only counts once every earlier element is present.
func DeriveStar(s types.StarAnswer) Section {
	switch {
	case !s.HasSituation():
		return Situation
	case !s.HasTask():
		return Task
	case !s.HasAction():
		return Action
	case !s.HasResult():
		return Result
	default:
		return Complete
	}
}
