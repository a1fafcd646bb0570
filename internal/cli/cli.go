package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"golfalerts/internal/app"
	"golfalerts/internal/catalog"
	"golfalerts/internal/config"
	"golfalerts/internal/entities"
	"golfalerts/internal/logging"
	"golfalerts/internal/service"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

type options struct {
	format   string
	verbose  bool
	provider string
	clubID   int
	courseID int
}

// NewRootCmd creates the operator CLI.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "teetimes",
		Short:        "Query tee times and run alert cycles from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.format = normalizeFormat(opts.format)
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newCoursesCmd(opts), newTeeTimesCmd(opts), newCycleCmd(opts), newHashPasswordCmd())
	return cmd
}

func newCoursesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the course catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cat, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			return printCourses(cmd.OutOrStdout(), opts.format, cat.Courses())
		},
	}
}

func newTeeTimesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tee-times [YYYY-MM-DD]",
		Short: "Show available tee times for one course or the whole catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now().Format(time.DateOnly)
			if len(args) == 1 {
				date = args[0]
			}
			cfg, logger, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			acq, err := app.NewAcquisition(cfg, logger)
			if err != nil {
				return err
			}
			svc := service.NewTeeTimeService(acq.Catalog, acq.Facade)

			var slots []entities.TeeTimeSlot
			var degraded bool
			if opts.clubID != 0 {
				slots, degraded, err = svc.GetTeeTimes(cmd.Context(), catalog.Provider(opts.provider), opts.clubID, opts.courseID, date)
			} else {
				slots, degraded, err = svc.GetAllTeeTimes(cmd.Context(), date)
			}
			if err != nil {
				return err
			}
			if degraded {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: some providers failed; results may be incomplete")
			}
			return printSlots(cmd.OutOrStdout(), opts.format, slots)
		},
	}
	cmd.Flags().StringVar(&opts.provider, "provider", string(catalog.MemberSports), "Provider of the course (membersports, chronogolf, foreup, clubcaddie, quick18)")
	cmd.Flags().IntVar(&opts.clubID, "club", 0, "Club id; omit to query every catalog course")
	cmd.Flags().IntVar(&opts.courseID, "course", 0, "Course id within the club; 0 picks the first")
	return cmd
}

func newCycleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run one notification cycle against the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if opts.verbose {
				cfg.LogLevel = "debug"
			}
			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			report := application.RunCycle(cmd.Context())
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d, matched %d, notified %d, failed %d in %s\n",
				report.Checked, report.Matched, report.Notified, report.Failed,
				report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func setup(cmd *cobra.Command, opts *options) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func printCourses(w io.Writer, format string, courses []catalog.Course) error {
	if format == "json" {
		return writeJSON(w, courses)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tCLUB\tCOURSE\tNAME\tCITY")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", c.Provider, c.ClubID, c.CourseID, c.Name, c.City)
	}
	return tw.Flush()
}

func printSlots(w io.Writer, format string, slots []entities.TeeTimeSlot) error {
	if format == "json" {
		return writeJSON(w, slots)
	}
	if len(slots) == 0 {
		fmt.Fprintln(w, "No tee times available.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCOURSE\tSPOTS\tHOLES\tPRICE")
	for _, s := range slots {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t$%s\n", s.TimeDisplay, s.CourseName, s.SpotsAvailable, s.Holes, s.Price.StringFixed(2))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
