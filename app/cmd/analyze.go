package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexcodex/declutter/app/runtime"
	"github.com/lexcodex/declutter/app/tui"
	"github.com/lexcodex/declutter/organizer"
	"github.com/lexcodex/declutter/persistence"
	"github.com/lexcodex/declutter/scan"
)

var (
	summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newAnalyzeCmd() *cobra.Command {
	var sessionID string
	var intent string
	var customPrompt string
	var review bool

	cmd := &cobra.Command{
		Use:   "analyze [directory]",
		Short: "Ask the configured provider how to organize a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := absDir(dir)
			if err != nil {
				return err
			}

			files, subdirs, err := scan.Directory(abs)
			if err != nil {
				return err
			}

			rt, err := runtime.New(cmd.Context(), globalCfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			prefs := organizer.Preferences{}
			var session *persistedSession
			if sessionID != "" {
				stored, err := rt.Sessions.Get(cmd.Context(), sessionID)
				if err != nil {
					return err
				}
				prefs = stored.RequestPreferences()
				session = &persistedSession{rt: rt, session: stored}
			}
			if intent != "" {
				prefs[organizer.PrefIntent] = intent
			}
			if customPrompt != "" {
				prefs[organizer.PrefCustomPrompt] = customPrompt
			}

			rt.Telemetry.Emit(analysisStartEvent(sessionID, abs, len(files)))
			started := time.Now()
			resp, err := rt.Provider.Analyze(cmd.Context(), organizer.AnalysisRequest{
				Files:             files,
				BaseDirectory:     abs,
				ExistingStructure: subdirs,
				Preferences:       prefs,
			})
			rt.Telemetry.Emit(analysisFinishEvent(sessionID, resp, err, time.Since(started)))
			if err != nil {
				return err
			}

			if resp.Clarification != nil {
				printClarification(cmd, resp.Clarification)
				return nil
			}
			if review && len(resp.Suggestions) > 0 {
				result, err := tui.Run(cmd.Context(), resp)
				if err != nil {
					return err
				}
				if result.Aborted {
					fmt.Fprintln(cmd.OutOrStdout(), faintStyle.Render("Review aborted; nothing recorded."))
					return nil
				}
				printReviewSummary(cmd, result)
				if session != nil {
					return session.record(cmd, result)
				}
				return nil
			}
			printResponse(cmd, resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Conversational session id to draw preferences from")
	cmd.Flags().StringVar(&intent, "intent", "", "Organization intent, e.g. \"sort my downloads by project\"")
	cmd.Flags().StringVar(&customPrompt, "prompt", "", "Send this prompt verbatim instead of the built-in one")
	cmd.Flags().BoolVar(&review, "review", false, "Review suggestions interactively before recording them")
	return cmd
}

func analysisStartEvent(sessionID, dir string, fileCount int) organizer.Event {
	return organizer.Event{
		Type:      organizer.EventAnalysisStart,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Message:   "analyzing " + dir,
		Metadata:  map[string]any{"file_count": fileCount},
	}
}

func analysisFinishEvent(sessionID string, resp *organizer.AnalysisResponse, err error, elapsed time.Duration) organizer.Event {
	event := organizer.Event{
		Type:      organizer.EventAnalysisFinish,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Message:   "analysis finished",
		Metadata:  map[string]any{"elapsed_ms": elapsed.Milliseconds()},
	}
	if resp != nil {
		event.Metadata["suggestion_count"] = len(resp.Suggestions)
		event.Metadata["clarification"] = resp.Clarification != nil
	}
	if err != nil {
		event.Metadata["error"] = err.Error()
	}
	return event
}

func absDir(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return filepath.Abs(dir)
}

func printResponse(cmd *cobra.Command, resp *organizer.AnalysisResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d suggestions", len(resp.Suggestions))))
	if resp.Reasoning != "" {
		fmt.Fprintln(out, resp.Reasoning)
	}
	for _, s := range resp.Suggestions {
		name := "(unmatched)"
		if s.File != nil {
			name = s.File.Name
		}
		fmt.Fprintf(out, "  %s -> %s %s\n",
			name,
			targetStyle.Render(s.SuggestedPath),
			faintStyle.Render(fmt.Sprintf("(%.0f%% — %s)", s.Confidence*100, s.Reason)))
	}
}

func printClarification(cmd *cobra.Command, c *organizer.ClarificationRequest) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summaryStyle.Render("The provider needs more detail before suggesting anything:"))
	if c.Reason != "" {
		fmt.Fprintln(out, c.Reason)
	}
	for _, q := range c.Questions {
		fmt.Fprintf(out, "  - %s\n", q)
	}
	fmt.Fprintln(out, faintStyle.Render("Answer with --intent or record replies in a session."))
}

func printReviewSummary(cmd *cobra.Command, result tui.Result) {
	fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(
		fmt.Sprintf("Approved %d, rejected %d", len(result.Approved), len(result.Rejected))))
}

// persistedSession folds review verdicts back into the stored session so
// the next analyze call carries them as approved/rejected patterns.
type persistedSession struct {
	rt      *runtime.Runtime
	session *persistence.Session
}

func (p *persistedSession) record(cmd *cobra.Command, result tui.Result) error {
	p.session.ApprovedPatterns = mergePatterns(p.session.ApprovedPatterns, result.Approved)
	p.session.RejectedPatterns = mergePatterns(p.session.RejectedPatterns, result.Rejected)
	if err := p.rt.Sessions.Save(cmd.Context(), p.session); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), faintStyle.Render("Session updated with your verdicts."))
	return nil
}

// mergePatterns folds the parent directories of reviewed suggestions into
// the existing pattern list, deduplicated and sorted.
func mergePatterns(existing []string, suggestions []organizer.Suggestion) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p] = struct{}{}
	}
	for _, s := range suggestions {
		pattern := path.Dir(s.SuggestedPath)
		if pattern == "." || pattern == "" {
			continue
		}
		seen[pattern] = struct{}{}
	}
	merged := make([]string, 0, len(seen))
	for p := range seen {
		merged = append(merged, p)
	}
	sort.Strings(merged)
	return merged
}
