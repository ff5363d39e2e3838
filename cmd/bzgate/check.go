package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kobihk/bzgate"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check BUG_ID...",
	Short: "Show bug states and the gating decision for a bug set",
	Long: `check fetches each named bug, prints its tracker state, and shows
the decision the library would make for a test annotated with exactly
these bugs.

Examples:
  bzgate check 1234
  bzgate check 1234 2345 --product-version 1.6`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}
	if !cfg.Complete() {
		return fmt.Errorf("bugzilla_url and product_version must be configured (flags, environment or bugzilla.yaml)")
	}

	gater, err := bzgate.New(cfg)
	if err != nil {
		return err
	}

	ids := make([]int, len(args))
	anyIDs := make([]any, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return fmt.Errorf("bug id %q is not a number", arg)
		}
		ids[i] = id
		anyIDs[i] = id
	}

	ctx := context.Background()
	decision, err := gater.Decide(ctx, bzgate.Bugs(anyIDs...))
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "STATUS", "RESOLUTION", "FIXED IN", "SUMMARY"})
	for _, id := range ids {
		// Decide already resolved these, so this is served from the
		// gater's cache without another round trip.
		bug, err := gater.Cache().GetOrFetch(ctx, id)
		if err != nil {
			return err
		}
		tw.AppendRow(table.Row{bug.ID, colorStatus(bug.Status), bug.Resolution, bug.FixedIn, truncate(bug.Summary, 60)})
	}
	tw.Render()

	fmt.Printf("\nDecision for version %s: %s\n", cfg.ProductVersion, colorDecision(decision.Kind))
	if decision.Reason != "" {
		fmt.Println(decision.Reason)
	}
	return nil
}

func colorStatus(status string) string {
	switch status {
	case "NEW", "ASSIGNED", "ON_DEV":
		return text.FgRed.Sprint(status)
	case "CLOSED", "VERIFIED", "RELEASE_PENDING":
		return text.FgGreen.Sprint(status)
	default:
		return text.FgYellow.Sprint(status)
	}
}

func colorDecision(kind bzgate.DecisionKind) string {
	switch kind {
	case bzgate.DecisionSkip:
		return text.FgRed.Sprint(kind)
	case bzgate.DecisionExpectedFailure:
		return text.FgYellow.Sprint(kind)
	default:
		return text.FgGreen.Sprint(kind)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
