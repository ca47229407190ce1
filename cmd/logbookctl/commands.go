package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"heli-training/logbook/internal/api"
	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/db"
	"heli-training/logbook/internal/export"
	"heli-training/logbook/internal/ingest"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/services"
	"heli-training/logbook/internal/stats"
)

var (
	operator     string
	statusFilter string
	studentName  string
	instructor   string
	grade        string
	remarks      string
	feedback     string
	outPath      string

	deps *api.Dependencies

	rootCmd = &cobra.Command{
		Use:               "logbookctl",
		Short:             "Operate the flight training logbook from the command line",
		SilenceUsage:      true,
		PersistentPreRunE: openDependencies,
	}

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Pull the remote logbook and replace the local copy",
		Args:  cobra.NoArgs,
		RunE:  runSync,
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List local flight records",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	validateCmd = &cobra.Command{
		Use:   "validate [flight id]",
		Short: "Validate a pending or rejected flight",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	rejectCmd = &cobra.Command{
		Use:   "reject [flight id]",
		Short: "Reject a pending flight",
		Args:  cobra.ExactArgs(1),
		RunE:  runReject,
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show validated flight hours",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	progressCmd = &cobra.Command{
		Use:   "progress",
		Short: "Show curriculum progress",
		Args:  cobra.NoArgs,
		RunE:  runProgress,
	}
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the local records as CSV",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&operator, "as", "operator", "name recorded as the reviewer of CLI actions")

	listCmd.Flags().StringVar(&statusFilter, "status", "", "pending, validated or rejected")
	listCmd.Flags().StringVar(&studentName, "student", "", "only this student's flights")
	listCmd.Flags().StringVar(&instructor, "instructor", "", "only this instructor's flights")

	validateCmd.Flags().StringVar(&grade, "grade", constants.BatchValidationGrade, "numeric grade 0-10 or APTO / NO APTO / NO EVALUABLE")
	validateCmd.Flags().StringVar(&remarks, "remarks", "", "validation remarks")

	rejectCmd.Flags().StringVar(&feedback, "feedback", "", "feedback for the student")

	statsCmd.Flags().StringVar(&studentName, "student", "", "only this student's hours")
	progressCmd.Flags().StringVar(&studentName, "student", "", "only this student's sessions")

	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&statusFilter, "status", "", "pending, validated or rejected")

	rootCmd.AddCommand(syncCmd, listCmd, validateCmd, rejectCmd, statsCmd, progressCmd, exportCmd)
}

func openDependencies(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := logging.Init(cfg.AppEnv); err != nil {
		return err
	}

	roster, err := config.LoadRoster(cfg.RosterFile)
	if err != nil {
		return err
	}
	orm, err := db.InitORM(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.InitSQLX(cfg, orm)
	if err != nil {
		return err
	}

	deps, err = api.InitDependencies(cmd.Context(), cfg, roster, orm, sqlDB, metrics.NewMetricsRegistry())
	return err
}

// closeDependencies flushes queued pushes and closes the stores. It runs after
// every command, including ones that failed.
func closeDependencies() {
	if deps != nil {
		deps.Close()
		deps = nil
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func claims() *auth.UserClaims {
	return auth.CLIClaims(operator)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := deps.SyncJob.Run(ctx, constants.SyncSourceCLI)
	if err != nil {
		return fmt.Errorf("sync failed, local logbook unchanged: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "synced %d records (%d flight rows and %d validation rows rejected) in %s\n",
		result.Records, result.RejectedFlights, result.RejectedValidations, result.Duration.Truncate(time.Millisecond))
	return nil
}

func parseStatusFlag(raw string) (models.ValidationStatus, error) {
	if raw == "" {
		return "", nil
	}
	status, ok := models.ParseValidationStatus(raw)
	if !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return status, nil
}

func runList(cmd *cobra.Command, args []string) error {
	status, err := parseStatusFlag(statusFilter)
	if err != nil {
		return err
	}
	flights := deps.Services.Flights.List(cmd.Context(), claims(), services.FlightFilter{
		Status:     status,
		Student:    studentName,
		Instructor: instructor,
	})
	return printFlights(cmd.OutOrStdout(), flights)
}

func printFlights(out io.Writer, flights []models.FlightLog) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTUDENT\tSESSION\tINSTRUCTOR\tTYPE\tHOURS\tSTATUS\tGRADE")
	for _, f := range flights {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Date, f.StudentName, f.Session, f.InstructorName,
			f.FlightType.Code(), ingest.FormatHours(f.TotalTime), f.ValidationStatus.Normalize(), f.Grade)
	}
	return w.Flush()
}

func runValidate(cmd *cobra.Command, args []string) error {
	flight, err := deps.Services.Validation.Validate(cmd.Context(), claims(), args[0], grade, remarks)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "validated %s (%s %s) grade %s\n", flight.ID, flight.StudentName, flight.Session, flight.Grade)
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	flight, err := deps.Services.Validation.Reject(cmd.Context(), claims(), args[0], feedback)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rejected %s (%s %s): %s\n", flight.ID, flight.StudentName, flight.Session, flight.StudentFeedback)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if studentName != "" {
		totals := deps.Services.Stats.HourTotals(cmd.Context(), claims(), studentName)
		printTotals(cmd.OutOrStdout(), studentName, totals)
		return nil
	}

	meters, err := deps.Services.Stats.Meter(cmd.Context(), claims())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tREAL\tSIM\tTOTAL\tGOAL")
	for _, m := range meters {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d%%\n", m.Student, m.RealHours, m.SimulatorHours, m.TotalHours, m.TotalPercent)
	}
	return w.Flush()
}

func printTotals(out io.Writer, student string, t stats.HourTotals) {
	fmt.Fprintf(out, "%s: %d flights, %.2f h (real %.2f, simulator %.2f, trainer %.2f)\n",
		student, t.Flights, t.TotalHours(), t.RealHours(), t.SimulatorHours(), t.TrainerHours())
}

func runProgress(cmd *cobra.Command, args []string) error {
	var course []stats.StudentProgress
	if studentName != "" {
		course = []stats.StudentProgress{{
			Student: studentName,
			Modules: deps.Services.Stats.Progress(cmd.Context(), claims(), studentName),
		}}
	} else {
		var err error
		if course, err = deps.Services.Stats.CourseProgress(cmd.Context(), claims()); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tMODULE\tDONE\tREQUIRED\tPERCENT")
	for _, p := range course {
		for _, m := range p.Modules {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d%%\n", p.Student, m.Code, m.Completed, m.Required, m.Percent)
		}
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	status, err := parseStatusFlag(statusFilter)
	if err != nil {
		return err
	}
	flights := deps.Services.Flights.List(cmd.Context(), claims(), services.FlightFilter{Status: status})

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}
	if err := export.WriteCSV(out, flights); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if outPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records to %s\n", len(flights), outPath)
	}
	return nil
}
