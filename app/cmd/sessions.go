package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/declutter/persistence"
)

// openSessionStore opens just the session database. Session bookkeeping
// must not demand a provider API key.
func openSessionStore() (*persistence.SQLiteSessionStore, error) {
	cfg := globalCfg
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return persistence.NewSQLiteSessionStore(cfg.SessionDBPath)
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage conversational organizing sessions",
	}
	cmd.AddCommand(
		newSessionsNewCmd(),
		newSessionsListCmd(),
		newSessionsShowCmd(),
		newSessionsAnswerCmd(),
		newSessionsDeleteCmd(),
	)
	return cmd
}

func newSessionsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <intent>",
		Short: "Start a session from an organization intent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			defer store.Close()
			session, err := store.Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s created. Use it with: declutter analyze --session %s\n", session.ID, session.ID)
			return nil
		},
	}
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			defer store.Close()
			sessions, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet. Start one with: declutter sessions new <intent>")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (updated %s)\n",
					s.ID, s.Intent, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one session in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			defer store.Close()
			session, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session:  %s\n", session.ID)
			fmt.Fprintf(out, "Intent:   %s\n", session.Intent)
			fmt.Fprintf(out, "Created:  %s\n", session.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "Updated:  %s\n", session.UpdatedAt.Format("2006-01-02 15:04"))
			printList(out, "Clarifications", session.Clarifications)
			printList(out, "Approved patterns", session.ApprovedPatterns)
			printList(out, "Rejected patterns", session.RejectedPatterns)
			return nil
		},
	}
}

func newSessionsAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <id> <text>",
		Short: "Record a clarification answer on a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			defer store.Close()
			session, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			session.Clarifications = append(session.Clarifications, strings.Join(args[1:], " "))
			if err := store.Save(cmd.Context(), session); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recorded.")
			return nil
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
}

func printList(out io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}
