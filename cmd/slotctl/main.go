// slotctl runs the slot engine offline against a schedule file and an optional
// list of appointments.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-scheduling/internal/settings"
	"github.com/hackgods/clinic-scheduling/internal/slots"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "slotctl",
		Short:        "Inspect appointment slots without a running server",
		SilenceUsage: true,
	}

	root.AddCommand(slotsCmd())
	root.AddCommand(timeCmd())

	return root
}

func slotsCmd() *cobra.Command {
	var (
		configPath string
		apptsPath  string
		date       string
		asJSON     bool
		validate   bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Generate and classify the slots of one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}

			cfg, err := loadSchedule(configPath)
			if err != nil {
				return err
			}
			if validate {
				if err := settings.Validate(cfg); err != nil {
					return err
				}
			}

			bookings, err := loadBookings(apptsPath)
			if err != nil {
				return err
			}

			classified := slots.ClassifySlots(slots.SlotsForDay(cfg, day), bookings, date)
			summary := slots.Summarize(classified)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"date":    date,
					"closed":  !cfg.IsWorkDay(day.Weekday()),
					"slots":   classified,
					"summary": summary,
				})
			}

			return printSlots(out, date, classified, summary)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "schedule file (yaml, json or toml); defaults when empty")
	cmd.Flags().StringVar(&apptsPath, "appointments", "", "JSON array of {patientName,date,time,duration}")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "day to classify (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&validate, "validate", false, "reject schedules the settings endpoint would reject")

	return cmd
}

func printSlots(out io.Writer, date string, classified []slots.Slot[booking], summary slots.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TIME\tSTATUS\tPATIENT\tDURATION\n")
	for _, s := range classified {
		patient, duration := "", ""
		if s.Appointment != nil {
			patient = s.Appointment.PatientName
			duration = slots.FormatDuration(slots.ParseDurationMinutes(s.Appointment.Duration))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Time, s.Status, patient, duration)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(classified) == 0 {
		fmt.Fprintf(out, "%s: closed or no slots configured\n", date)
		return nil
	}
	fmt.Fprintf(out, "%s: %d start, %d occupied, %d available\n",
		date, summary.Start, summary.Occupied, summary.Available)
	return nil
}

func timeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "time <value>",
		Short: "Show how a time string is parsed and normalized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := args[0]
			normalized := slots.NormalizeTimeFormat(value)
			minutes := slots.ToMinutes(normalized)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "input:      %q\n", value)
			fmt.Fprintf(out, "normalized: %q\n", normalized)
			if parts := slots.ExtractTimeParts(normalized); parts != nil {
				fmt.Fprintf(out, "parts:      hour=%d minute=%d period=%s\n", parts.Hour, parts.Minute, parts.Period)
			} else {
				fmt.Fprintln(out, "parts:      unrecognized")
			}
			fmt.Fprintf(out, "minutes:    %d\n", minutes)
			fmt.Fprintf(out, "display:    %s\n", slots.ToTimeString(minutes))
			return nil
		},
	}
}
