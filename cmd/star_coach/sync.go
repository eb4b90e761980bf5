package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/star-coach/internal/apiclient"
	"github.com/jonathan/star-coach/internal/db"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	pushID     string
	pushToken  string
	pullToken  string
	pullDelete bool
)

// sessionRemote is the proxy's session API.
type sessionRemote interface {
	CreateSession(ctx context.Context, kind string, payload any) (*types.SessionCreated, error)
	SaveSession(ctx context.Context, id uuid.UUID, token, kind string, payload any) error
	LoadSession(ctx context.Context, id uuid.UUID, token string) (*types.SnapshotResponse, error)
	DeleteSession(ctx context.Context, id uuid.UUID, token string) error
}

var _ sessionRemote = (*apiclient.Client)(nil)

var pushCmd = &cobra.Command{
	Use:   "push [interview|ticket]",
	Short: "Upload the last saved session to the proxy",
	Long: `Upload the most recent local session to the coaching proxy so it can be
pulled on another machine. Without --id a new remote session is created and
its ID and token are printed; with --id and --token the remote copy is
replaced.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{db.KindInterview, db.KindTicket},
	RunE:      runPush,
}

var pullCmd = &cobra.Command{
	Use:   "pull <session-id>",
	Short: "Download a session from the proxy",
	Long: `Download a session from the coaching proxy into the local session
database. "coach --resume" then continues it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPull,
}

func init() {
	pushCmd.Flags().StringVar(&pushID, "id", "", "Replace this remote session instead of creating one")
	pushCmd.Flags().StringVar(&pushToken, "token", "", "Token of the remote session given with --id")
	pullCmd.Flags().StringVar(&pullToken, "token", "", "Token printed by push")
	pullCmd.Flags().BoolVar(&pullDelete, "delete", false, "Delete the remote copy after downloading it")
	_ = pullCmd.MarkFlagRequired("token")
	rootCmd.AddCommand(pushCmd, pullCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	kind := db.KindInterview
	if len(args) == 1 {
		kind = args[0]
	}
	var id uuid.UUID
	if pushID != "" {
		parsed, err := uuid.Parse(pushID)
		if err != nil {
			return fmt.Errorf("invalid --id: %w", err)
		}
		if pushToken == "" {
			return fmt.Errorf("--id needs the session's --token")
		}
		id = parsed
	}

	remote, store, err := openSync()
	if err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()
	defer func() { _ = store.Close() }()

	created, err := pushSession(cmd.Context(), store, remote, kind, id, pushToken)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session: %s\n", created.ID)
	fmt.Fprintf(out, "Token:   %s\n", created.Token)
	return nil
}

func runPull(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}

	remote, store, err := openSync()
	if err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()
	defer func() { _ = store.Close() }()

	snap, err := pullSession(cmd.Context(), store, remote, id, pullToken, pullDelete)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s session %s to %s\n", snap.Kind, snap.ID, settings.DBPath)
	return nil
}

func openSync() (*apiclient.Client, *db.SQLite, error) {
	if settings.ServerURL == "" {
		return nil, nil, fmt.Errorf("no proxy configured: set --server or STAR_COACH_SERVER")
	}
	store, err := db.OpenSQLite(settings.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session database: %w", err)
	}
	return apiclient.New(settings.ServerURL, apiclient.WithLogger(logger)), store, nil
}

// pushSession uploads the latest local snapshot of kind. A nil id creates a
// new remote session.
func pushSession(ctx context.Context, store db.SnapshotStore, remote sessionRemote, kind string, id uuid.UUID, token string) (*types.SessionCreated, error) {
	rec, err := db.Latest(ctx, store, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load last session: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("no saved %s session to push", kind)
	}

	if id == uuid.Nil {
		created, err := remote.CreateSession(ctx, kind, rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote session: %w", err)
		}
		return created, nil
	}
	if err := remote.SaveSession(ctx, id, token, kind, rec.Payload); err != nil {
		return nil, fmt.Errorf("failed to update remote session: %w", err)
	}
	return &types.SessionCreated{ID: id, Token: token}, nil
}

// pullSession stores a remote session locally under the same ID.
func pullSession(ctx context.Context, store db.SnapshotStore, remote sessionRemote, id uuid.UUID, token string, deleteRemote bool) (*db.Snapshot, error) {
	resp, err := remote.LoadSession(ctx, id, token)
	if err != nil {
		return nil, fmt.Errorf("failed to download session: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("session %s does not exist on the proxy", id)
	}

	snap := &db.Snapshot{ID: resp.ID, Kind: resp.Kind, Payload: resp.Payload}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save session locally: %w", err)
	}

	if deleteRemote {
		if err := remote.DeleteSession(ctx, id, token); err != nil {
			logger.Warn("failed to delete remote session", zap.Stringer("id", id), zap.Error(err))
		}
	}
	return snap, nil
}
