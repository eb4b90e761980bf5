package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/star-coach/internal/coach"
	"github.com/jonathan/star-coach/internal/db"
	"github.com/jonathan/star-coach/internal/extraction"
	"github.com/jonathan/star-coach/internal/interview"
	"github.com/jonathan/star-coach/internal/observability"
	"github.com/jonathan/star-coach/internal/tui"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	coachJobFile   string
	coachJobURL    string
	coachShuffle   bool
	coachStartWith string
	coachResume    bool
	coachStrict    bool
)

var coachCmd = &cobra.Command{
	Use:   "coach [star|ticket]",
	Short: "Start an interactive coaching session",
	Long: `Start a coaching conversation in the terminal.

star (the default) builds a STAR interview answer. With --job or --job-url the
job description is analysed first and you answer one question per competency;
Ctrl+N saves the current answer and moves to the next competency.

ticket builds a work ticket: intent, outcome, scope, success criteria and
constraints.

Every change is saved to the local session database; --resume continues the
last session.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{types.WorkflowStar, types.WorkflowTicket},
	RunE:      runCoach,
}

func init() {
	coachCmd.Flags().StringVar(&coachJobFile, "job", "", "Job description file (text or PDF) to coach against")
	coachCmd.Flags().StringVar(&coachJobURL, "job-url", "", "Job posting URL to coach against")
	coachCmd.Flags().BoolVar(&coachShuffle, "shuffle", false, "Coach the competencies in random order")
	coachCmd.Flags().StringVar(&coachStartWith, "competency", "", "Competency ID to start with")
	coachCmd.Flags().BoolVar(&coachResume, "resume", false, "Continue the last saved session")
	coachCmd.Flags().BoolVar(&coachStrict, "strict-sections", false, "Never move past the section the captured answer supports")
	rootCmd.AddCommand(coachCmd)
}

func runCoach(cmd *cobra.Command, args []string) error {
	kind := types.WorkflowStar
	if len(args) == 1 {
		kind = args[0]
	}
	if kind != types.WorkflowStar && kind != types.WorkflowTicket {
		return fmt.Errorf("unknown workflow %q (want star or ticket)", kind)
	}

	ctx := cmd.Context()
	be, err := newBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	store, err := db.OpenSQLite(settings.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer func() { _ = store.Close() }()

	policy := extraction.DefaultPolicy()
	policy.TrustModelSuggestion = !coachStrict

	if kind == types.WorkflowTicket {
		return runTicket(ctx, cmd, be, store, policy)
	}
	return runStar(ctx, cmd, be, store, policy)
}

func runTicket(ctx context.Context, cmd *cobra.Command, be backend, store db.SnapshotStore, policy extraction.Policy) error {
	id := uuid.New()
	var restore *sessionSnapshot[types.Ticket]
	if coachResume {
		snap, prevID, err := loadLatest[types.Ticket](ctx, store, db.KindTicket)
		if err != nil {
			return err
		}
		if snap != nil {
			restore, id = snap, prevID
		}
	}

	writer := newSnapshotWriter[types.Ticket](store, id, db.KindTicket, logger)
	session := coach.New(coach.Config[types.Ticket, types.TicketUpdates]{
		Workflow:  workflow.Ticket(),
		Chat:      be,
		Extractor: be,
		Policy:    policy,
		Logger:    logger,
		Persist:   writer.Coach,
	})
	defer session.Close()

	if restore != nil {
		if err := session.Restore(restore.Coach); err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
	}

	if _, err := tui.Run(ctx, tui.New(tui.Config[types.Ticket, types.TicketUpdates]{
		Session: session,
		Title:   "Ticket coach",
		Panel:   tui.TicketPanel,
		Logger:  logger,
	})); err != nil {
		return err
	}

	session.Wait()
	doc := session.Document()
	observability.NewPrinter(cmd.OutOrStdout()).PrintTicket(&doc)
	return nil
}

func runStar(ctx context.Context, cmd *cobra.Command, be backend, store db.SnapshotStore, policy extraction.Policy) error {
	id := uuid.New()
	var restore *sessionSnapshot[types.StarAnswer]
	if coachResume {
		snap, prevID, err := loadLatest[types.StarAnswer](ctx, store, db.KindInterview)
		if err != nil {
			return err
		}
		if snap != nil {
			restore, id = snap, prevID
		}
	}

	writer := newSnapshotWriter[types.StarAnswer](store, id, db.KindInterview, logger)
	iv := interview.NewSession(interview.WithPersist(writer.Interview), interview.WithLogger(logger))

	switch {
	case restore != nil && restore.Interview != nil:
		if iv.Load(*restore.Interview) {
			fmt.Fprintln(cmd.ErrOrStderr(), "The saved interview was incomplete and has been reset.")
		}
	case coachJobFile != "" || coachJobURL != "":
		if err := prepareInterview(ctx, cmd, be, iv); err != nil {
			return err
		}
	}

	session := coach.New(coach.Config[types.StarAnswer, types.StarUpdates]{
		Workflow:  workflow.Star(),
		Chat:      be,
		Extractor: be,
		Policy:    policy,
		Hints:     iv.Hints(),
		Logger:    logger,
		Persist:   writer.Coach,
	})
	defer session.Close()

	if restore != nil {
		if err := session.Restore(restore.Coach); err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
	}

	cfg := tui.Config[types.StarAnswer, types.StarUpdates]{
		Session: session,
		Title:   "STAR coach",
		Panel:   tui.StarPanel,
		Logger:  logger,
	}
	if iv.State().Phase == interview.PhaseCoaching {
		cfg.Title = "STAR coach · " + iv.State().JobTitle
		cfg.Advance = advanceInterview(iv)
	}

	final, err := tui.Run(ctx, tui.New(cfg))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if final.Finished() {
		_, err := fmt.Fprint(out, iv.ExportMarkdown())
		return err
	}
	session.Wait()
	doc := session.Document()
	observability.NewPrinter(out).PrintStarAnswer(&doc)
	if p := iv.Progress(); iv.State().Phase == interview.PhaseCoaching {
		observability.NewPrinter(out).PrintProgress("Answers", p.Completed, p.Total)
	}
	return nil
}

// prepareInterview analyses the job description and starts coaching its
// competencies.
func prepareInterview(ctx context.Context, cmd *cobra.Command, be backend, iv *interview.Session) error {
	req, err := jobRequest(ctx, be, coachJobFile, coachJobURL, cmd.InOrStdin())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Analysing the job description...")
	analysis, err := be.AnalyzeJob(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to analyse job description: %w", err)
	}
	if err := iv.ApplyAnalysis(req.JobDescription, *analysis); err != nil {
		return err
	}
	logger.Info("job analysed",
		zap.String("title", analysis.JobTitle), zap.Int("competencies", len(analysis.Competencies)))

	if coachStartWith != "" {
		return iv.StartWith(coachStartWith)
	}
	return iv.StartCoaching(coachShuffle)
}

// advanceInterview completes the current competency with the coached answer
// and returns the hints for the next one.
func advanceInterview(iv *interview.Session) tui.AdvanceFunc[types.StarAnswer] {
	return func(doc types.StarAnswer) (types.CoachingContext, bool, error) {
		if doc.IsEmpty() {
			return types.CoachingContext{}, false, fmt.Errorf("the answer is still empty")
		}
		if err := iv.CompleteCurrent(doc); err != nil {
			return types.CoachingContext{}, false, err
		}
		if iv.State().Phase == interview.PhaseComplete {
			return types.CoachingContext{}, true, nil
		}
		return iv.Hints(), false, nil
	}
}
