package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import leads from a CSV file",
		Long: `Import leads from a CSV file with the columns
name, phone, location, salesperson and optionally cohort, remark,
appointment. Rows missing a required value are rejected
and reported; the rest are appended to the leads collection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			result, err := c.app.Tracker.ImportLeads(f)
			if err != nil {
				return err
			}

			c.logger().WithFields(logrus.Fields{
				"file":     args[0],
				"imported": result.Imported,
				"rejected": result.Rejected,
			}).Info("Leads imported")

			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var format string
	var dir string

	cmd := &cobra.Command{
		Use:       "export leads|leaders",
		Short:     "Export active leads or onboarded leaders",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"leads", "leaders"},
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := services.ParseExportFormat(format)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = c.app.Config.Tracker.ExportDir
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create export directory: %w", err)
			}

			// Written to a temp file first since the filename depends on the export date
			tmp, err := os.CreateTemp(dir, ".sgl-export-*")
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer os.Remove(tmp.Name())

			var filename string
			switch args[0] {
			case "leads":
				filename, err = c.app.Tracker.ExportLeads(tmp, exportFormat)
			default:
				filename, err = c.app.Tracker.ExportLeaders(tmp, exportFormat)
			}
			if closeErr := tmp.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			// CreateTemp makes the file owner-only
			if err := os.Chmod(tmp.Name(), 0o644); err != nil {
				return fmt.Errorf("failed to set export permissions: %w", err)
			}

			target := filepath.Join(dir, filename)
			if err := os.Rename(tmp.Name(), target); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(services.FormatCSV), "Export format (csv or xlsx)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (defaults to EXPORT_DIR)")
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	var week string
	var salesperson string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show weekly sales performance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			perf, err := c.app.Tracker.WeeklyPerformance(week, salesperson)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), perf)
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "", "Any date (YYYY-MM-DD) inside the week; defaults to this week")
	cmd.Flags().StringVarP(&salesperson, "salesperson", "s", "", "Only show this salesperson")
	return cmd
}

func (c *cli) cohortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cohorts",
		Short: "Show all-time conversion by cohort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			insights, err := c.app.Tracker.CohortInsights()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), insights)
		},
	}
}

func (c *cli) weeksCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "List recent week windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Tracker.RecentWeeks(count))
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of weeks (defaults to RECENT_WEEKS)")
	return cmd
}

func (c *cli) checkInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <salesperson>",
		Short: "Record today's check-in for a salesperson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := c.app.Tracker.CheckIn(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
}

func (c *cli) checkInsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "checkins",
		Short: "List check-ins for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.app.Tracker.CheckInsForDate(date)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to list (YYYY-MM-DD); defaults to today")
	return cmd
}

func (c *cli) followUpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow-ups",
		Short: "List onboarded leaders that are due a follow-up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			leaders, err := c.app.Tracker.FollowUps()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), leaders)
		},
	}
}

func (c *cli) promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <lead-id>",
		Short: "Promote a lead to onboarded leader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leader, err := c.app.Tracker.PromoteLead(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), leader)
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	opts := services.SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with generated demo data",
		Long: `Generate salespeople and leads with realistic names and local phone
numbers. Everything goes through the normal add and promote operations, so
the same seed always produces the same names and numbers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := services.SeedDemoData(c.app.Tracker, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().IntVar(&opts.Salespeople, "salespeople", 5, "Number of salespeople")
	cmd.Flags().IntVar(&opts.Leads, "leads", 40, "Number of leads")
	cmd.Flags().Float64Var(&opts.PromoteRatio, "promote-ratio", 0.25, "Share of leads promoted right away")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "Random seed")
	return cmd
}
