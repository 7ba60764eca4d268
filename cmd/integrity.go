package cmd

import (
	"visit-tracker/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var integrityUser string

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the stored visits",
	Long:  `Validates the stored visits against their invariants and checks that the database schema matches the visit model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		logg := rt.logger

		svc := integrity.NewService(rt.store, rt.db, logg)

		logg.Info("Checking server schema integrity...")
		report, err := svc.CheckServer()
		if err != nil {
			logg.Error("Server schema check failed", zap.Error(err))
		} else if report.Matched {
			logg.Info("Server schema matches expected definition.", zap.String("driver", report.Driver))
		} else {
			logg.Warn("Server schema mismatches found", zap.String("driver", report.Driver))
			for table, tblReport := range report.Tables {
				if tblReport.Status == "ok" {
					continue
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}

		logg.Info("Checking visit invariants...", zap.String("user_id", integrityUser))
		visitsReport, err := svc.CheckVisits(cmd.Context(), integrityUser)
		if err != nil {
			return err
		}
		if visitsReport.Matched {
			logg.Info("Visits are consistent.",
				zap.Int("users", visitsReport.Users),
				zap.Int("visits", visitsReport.Visits))
			return nil
		}

		for _, v := range visitsReport.Violations {
			logg.Warn("Invariant violation",
				zap.String("user_id", v.UserID),
				zap.String("feature_id", v.FeatureID),
				zap.Strings("visit_ids", v.VisitIDs),
				zap.String("reason", v.Reason))
		}
		for _, e := range visitsReport.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
		return nil
	},
}

func init() {
	integrityCmd.Flags().StringVar(&integrityUser, "user", "", "Only check this user")
	RootCmd.AddCommand(integrityCmd)
}
