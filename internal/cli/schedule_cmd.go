package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/bouwkost/internal/bimsync"
	"github.com/alexanderramin/bouwkost/internal/cli/formatter"
	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/export"
	"github.com/alexanderramin/bouwkost/internal/importer"
	"github.com/alexanderramin/bouwkost/internal/sample"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

func newInitCmd(app *App) *cobra.Command {
	var name string
	var useSample bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new cost schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []schedule.Option{schedule.WithObserver(app.observer())}
			if name != "" {
				opts = append(opts, schedule.WithName(name))
			}

			var s *schedule.Schedule
			if useSample {
				// The sample budget carries its own rates.
				var err error
				s, err = sample.Budget(opts...)
				if err != nil {
					return fmt.Errorf("building sample schedule: %w", err)
				}
			} else {
				opts = append(opts,
					schedule.WithTaxRate(app.Defaults.TaxRateDecimal()),
					schedule.WithSurcharges(schedule.Surcharges{
						OverheadRate:   app.Defaults.OverheadRateDecimal(),
						ProfitRiskRate: app.Defaults.ProfitRiskRateDecimal(),
					}),
				)
				s = schedule.New(opts...)
			}

			if err := app.Store.Save(context.Background(), s.DumpState()); err != nil {
				return err
			}

			info := s.Info()
			fmt.Fprintf(app.Out, "Aangemaakt: %s [%s]\n", info.Name, info.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Schedule name")
	cmd.Flags().BoolVar(&useSample, "sample", false, "Seed with the sample dwelling budget")

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := app.Store.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(app.Out, formatter.RenderScheduleList(infos))
			return nil
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <schedule>",
		Short: "Display a schedule as a tree with totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchedule(context.Background(), app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(app.Out, formatter.RenderSchedule(s.Snapshot()))
			return nil
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <schedule> <records.json>",
		Short: "Import cost records into a schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := loadSchedule(ctx, app, args[0])
			if err != nil {
				return err
			}

			records, err := importer.LoadRecords(args[1])
			if err != nil {
				return err
			}

			summary, err := importer.Import(s, records)
			if err != nil {
				return err
			}
			if err := app.Store.Save(ctx, s.DumpState()); err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "Geïmporteerd: %d hoofdstukken, %d kostenregels, %d tekstregels",
				summary.Chapters, summary.CostItems, summary.TextLines)
			if summary.Flagged > 0 {
				fmt.Fprintf(app.Out, " (%d gemarkeerd voor controle)", summary.Flagged)
			}
			fmt.Fprintln(app.Out)
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var name, taxRate, overheadRate, profitRiskRate, status string

	cmd := &cobra.Command{
		Use:   "edit <schedule>",
		Short: "Change document-level values of a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := loadSchedule(ctx, app, args[0])
			if err != nil {
				return err
			}

			var edit schedule.DocEdit
			if name != "" {
				edit.Name = &name
			}
			if taxRate != "" {
				d, err := decimal.NewFromString(taxRate)
				if err != nil {
					return fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
				}
				edit.TaxRate = &d
			}
			if overheadRate != "" {
				d, err := decimal.NewFromString(overheadRate)
				if err != nil {
					return fmt.Errorf("invalid overhead rate %q: %w", overheadRate, err)
				}
				edit.OverheadRate = &d
			}
			if profitRiskRate != "" {
				d, err := decimal.NewFromString(profitRiskRate)
				if err != nil {
					return fmt.Errorf("invalid profit-and-risk rate %q: %w", profitRiskRate, err)
				}
				edit.ProfitRiskRate = &d
			}
			if status != "" {
				st := domain.ScheduleStatus(status)
				switch st {
				case domain.StatusDraft, domain.StatusApproved, domain.StatusSubmitted, domain.StatusRejected:
				default:
					return fmt.Errorf("invalid status %q (use draft, approved, submitted, or rejected)", status)
				}
				edit.Status = &st
			}

			if edit == (schedule.DocEdit{}) {
				return fmt.Errorf("nothing to change: pass at least one flag")
			}

			if err := s.Apply(schedule.EditDocument(edit)); err != nil {
				return err
			}
			if err := app.Store.Save(ctx, s.DumpState()); err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "Bijgewerkt: %s\n", s.Info().Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New schedule name")
	cmd.Flags().StringVar(&taxRate, "tax", "", "VAT percentage")
	cmd.Flags().StringVar(&overheadRate, "overhead", "", "General overhead (AK) percentage")
	cmd.Flags().StringVar(&profitRiskRate, "profit-risk", "", "Profit and risk (WR) percentage")
	cmd.Flags().StringVar(&status, "status", "", "Schedule status (draft, approved, submitted, rejected)")

	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export <schedule>",
		Short: "Export a schedule to Excel or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchedule(context.Background(), app, args[0])
			if err != nil {
				return err
			}
			snap := s.Snapshot()

			var data []byte
			switch strings.ToLower(format) {
			case "xlsx":
				data, err = export.Excel(snap)
			case "pdf":
				data, err = export.PDF(snap)
			default:
				return fmt.Errorf("unsupported export format %q (use xlsx or pdf)", format)
			}
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = sanitizeFilename(snap.Info.Name) + "." + strings.ToLower(format)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Fprintf(app.Out, "Geëxporteerd naar %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "Export format: xlsx or pdf")
	cmd.Flags().StringVar(&out, "out", "", "Output path (defaults to the schedule name)")

	return cmd
}

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <schedule> <elements.json>",
		Short: "Reconcile quantities from a building model export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := loadSchedule(ctx, app, args[0])
			if err != nil {
				return err
			}

			elems, err := loadElements(args[1])
			if err != nil {
				return err
			}

			report, err := bimsync.Reconcile(s, elems)
			if err != nil {
				return err
			}
			if err := app.Store.Save(ctx, s.DumpState()); err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "Gesynchroniseerd: %d bijgewerkt, %d nieuw, %d vervallen\n",
				report.Updated, report.Created, report.Orphaned)
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <schedule>",
		Short: "Delete a stored schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Store.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Verwijderd: %s\n", id)
			return nil
		},
	}
}

func loadElements(path string) ([]bimsync.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading elements %s: %w", path, err)
	}
	var elems []bimsync.Element
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("parsing elements %s: %w", path, err)
	}
	return elems, nil
}

// sanitizeFilename keeps schedule names usable as file names.
func sanitizeFilename(name string) string {
	if name == "" {
		return "begroting"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
}
