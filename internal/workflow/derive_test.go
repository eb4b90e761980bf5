package workflow

import (
	"testing"

	"github.com/jonathan/star-coach/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDeriveStar(t *testing.T) {
	tests := []struct {
		name string
		doc  types.StarAnswer
		want Section
	}{
		{"empty", types.StarAnswer{}, Situation},
		{"situation", types.StarAnswer{Situation: "s"}, Task},
		{"situation and task", types.StarAnswer{Situation: "s", Task: "t"}, Action},
		{"through action", types.StarAnswer{Situation: "s", Task: "t", Action: "a"}, Result},
		{"all four", types.StarAnswer{Situation: "s", Task: "t", Action: "a", Result: "r"}, Complete},
		{"gap before result", types.StarAnswer{Situation: "s", Result: "r"}, Task},
		{"whitespace is empty", types.StarAnswer{Situation: " "}, Situation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStar(tt.doc))
		})
	}
}

func TestDeriveTicket(t *testing.T) {
	withScope := types.NewTicket()
	withScope.Intent = "i"
	withScope.Outcome = "o"
	withScope.Scope.Included = []string{"api"}

	complete := withScope.Clone()
	complete.SuccessCriteria = []string{"p95 < 1s"}

	tests := []struct {
		name string
		doc  types.Ticket
		want Section
	}{
		{"empty", types.NewTicket(), Intent},
		{"intent", types.Ticket{Intent: "i"}, Outcome},
		{"intent and outcome", types.Ticket{Intent: "i", Outcome: "o"}, Scope},
		{"with scope", withScope, Success},
		{"with success criteria", complete, Complete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTicket(tt.doc))
		})
	}
}

func TestDerive_IsPathIndependent(t *testing.T) {
	s := func(v string) *string { return &v }
	wf := Star()

	a := wf.Merge(wf.Merge(wf.Empty(), types.StarUpdates{Situation: s("x")}), types.StarUpdates{Task: s("y")})
	b := wf.Merge(wf.Merge(wf.Empty(), types.StarUpdates{Task: s("y")}), types.StarUpdates{Situation: s("x")})

	assert.Equal(t, a, b)
	assert.Equal(t, wf.Derive(a), wf.Derive(b))
}
