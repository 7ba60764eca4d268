package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"visit-tracker/feature/visits"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	visitsUser  string
	visitsJSON  bool
	visitsPurge bool
	yesConfirm  bool
)

// visitsCmd is the parent command for visit administration.
var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Inspect and administer stored visits",
}

// visitsListCmd prints a user's visits.
var visitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the visits of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		list, err := rt.service.Visits(cmd.Context(), visitsUser)
		if err != nil {
			return err
		}
		views := visits.NewVisitViews(list)

		if visitsJSON {
			data, err := json.MarshalIndent(visits.VisitsResponse{UserID: visitsUser, Visits: views}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("\n=== Visits of %s ===\n", visitsUser)
		for _, v := range views {
			fmt.Printf("%-38s %-24s %14.3f %14.3f\n", v.ID, v.FeatureID, v.Start, v.Finish)
		}
		fmt.Printf("Total: %d\n", len(views))
		return nil
	},
}

// visitsResetCmd deletes a user's visits.
var visitsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every visit of a user",
	Long: `Deletes every stored visit of a user. With --purge the archived
snapshots are removed as well, so a later rebuild starts from nothing.

Examples:
  # Interactive confirmation
  visits reset --user u1

  # Non-interactive
  visits reset --user u1 --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		fmt.Printf("About to delete every visit of %s", visitsUser)
		if visitsPurge {
			fmt.Print(" and its archived snapshots")
		}
		fmt.Println(".")

		if !confirmDestructiveAction() {
			fmt.Println("Aborted.")
			return nil
		}

		removed, err := rt.service.Reset(cmd.Context(), visitsUser, visitsPurge)
		if err != nil {
			return err
		}
		rt.logger.Info("Visits reset", zap.String("user_id", visitsUser), zap.Int64("removed", removed))
		return nil
	},
}

// visitsRebuildCmd replays a user's archived snapshots.
var visitsRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute the visits of a user from archived snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.service.Rebuild(cmd.Context(), visitsUser)
		if err != nil {
			return err
		}
		fmt.Printf("Rebuilt %s: %d snapshots replayed, %d visits\n", res.UserID, res.Snapshots, res.Visits)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{visitsListCmd, visitsResetCmd, visitsRebuildCmd} {
		c.Flags().StringVar(&visitsUser, "user", "", "User ID")
		_ = c.MarkFlagRequired("user")
		visitsCmd.AddCommand(c)
	}
	visitsListCmd.Flags().BoolVar(&visitsJSON, "json", false, "Output JSON")
	visitsResetCmd.Flags().BoolVar(&visitsPurge, "purge", false, "Also purge archived snapshots")
	visitsResetCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(visitsCmd)
}

func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
