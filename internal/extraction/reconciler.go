package extraction

import (
	"context"

	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
	"go.uber.org/zap"
)

// Policy controls how far the model may move the section pointer.
type Policy struct {
	// TrustModelSuggestion lets a valid model suggestion advance the section
	// beyond what the captured fields imply. When false the section never
	// passes the data-derived section.
	TrustModelSuggestion bool
}

// DefaultPolicy trusts the model's suggestion.
func DefaultPolicy() Policy {
	return Policy{TrustModelSuggestion: true}
}

// Outcome is the state after one reconciliation cycle. When Applied is false
// Document and Section are the inputs, unchanged.
type Outcome[D any] struct {
	Document D
	Section  workflow.Section
	Complete bool
	Applied  bool
}

// Reconciler runs one extraction cycle for a workflow.
type Reconciler[D any, U any] struct {
	wf        workflow.Workflow[D, U]
	extractor Extractor
	policy    Policy
	logger    *zap.Logger
}

// NewReconciler creates a reconciler. A nil logger disables logging.
func NewReconciler[D any, U any](wf workflow.Workflow[D, U], extractor Extractor, policy Policy, logger *zap.Logger) *Reconciler[D, U] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler[D, U]{wf: wf, extractor: extractor, policy: policy, logger: logger}
}

// Extract sends the conversation to the extraction capability and decodes the reply.
func (r *Reconciler[D, U]) Extract(ctx context.Context, turns []types.Turn, current workflow.Section, hints types.CoachingContext) (Result[U], error) {
	body, err := r.extractor.Extract(ctx, types.CoachRequest{
		Workflow:        r.wf.Name,
		Messages:        turns,
		CurrentSection:  string(current),
		CoachingContext: hints,
	})
	if err != nil {
		return Result[U]{}, err
	}
	return Decode[U](body, r.wf.UpdatesKey)
}

// Next merges res into doc and computes the next section. It is pure.
//
// The next section is the furthest of the current section, the section the
// merged document implies, and (under the trusting policy) the model's
// suggestion. Unknown suggestions are ignored, so the section never moves back.
func (r *Reconciler[D, U]) Next(current workflow.Section, doc D, res Result[U]) Outcome[D] {
	merged := r.wf.Clone(doc)
	if res.Updates != nil {
		merged = r.wf.Merge(merged, *res.Updates)
	}

	order := r.wf.Order
	next := order.Max(current, r.wf.Derive(merged))
	if r.policy.TrustModelSuggestion && order.Valid(res.SuggestedSection) {
		next = order.Max(next, res.SuggestedSection)
	}

	return Outcome[D]{
		Document: merged,
		Section:  next,
		Complete: next == workflow.Complete,
		Applied:  true,
	}
}

// Reconcile runs Extract then Next. Failures are logged at warn and yield an
// unapplied outcome carrying the inputs unchanged.
func (r *Reconciler[D, U]) Reconcile(ctx context.Context, turns []types.Turn, current workflow.Section, doc D, hints types.CoachingContext) Outcome[D] {
	res, err := r.Extract(ctx, turns, current, hints)
	if err != nil {
		r.logger.Warn("extraction skipped",
			zap.String("workflow", r.wf.Name),
			zap.String("section", string(current)),
			zap.Error(err))
		return Outcome[D]{Document: doc, Section: current, Complete: current == workflow.Complete}
	}
	return r.Next(current, doc, res)
}
