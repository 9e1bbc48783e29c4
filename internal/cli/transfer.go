package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/csvcodec"
	"github.com/sandeepkv93/daycal/internal/importer"
	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/update"
)

type importOptions struct {
	date string
	yes  bool
}

func addImport(topLevel *cobra.Command, a *app) {
	o := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import tasks from a CSV file.",
		Long: `Import tasks from a CSV file with a title, date, notes and completed column.

Without flags an interactive screen lets you date each row, date them all,
or send rows to the later list. --date dates every row and skips the screen;
--yes keeps the dates in the file and drops rows without one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), cmd.OutOrStdout(), args[0], o)
		},
	}
	cmd.Flags().StringVar(&o.date, "date", "", "Date every imported row with this day.")
	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "Import without the interactive screen.")
	topLevel.AddCommand(cmd)
}

func (a *app) runImport(ctx context.Context, out io.Writer, path string, o *importOptions) error {
	raw, err := readInput(path)
	if err != nil {
		return err
	}
	staged := importer.Stage(string(raw))
	if len(staged) == 0 {
		return fmt.Errorf("import: no rows with a title in %s", path)
	}

	if err := a.openStore(); err != nil {
		return err
	}
	book := storeBook{a.store}

	var res update.ImportResult
	switch {
	case o.date != "" || o.yes:
		session := importer.NewSession(staged)
		if o.date != "" {
			day, err := a.resolveDay(o.date)
			if err != nil {
				return err
			}
			if err := session.AssignAll(day); err != nil {
				return err
			}
		}
		res = update.ImportResult{Tasks: session.Apply(), Applied: true}
		if err := update.Persist(ctx, book, res.Tasks, nil); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	default:
		final, err := tea.NewProgram(update.NewImportModel(ctx, staged, book), tea.WithAltScreen()).Run()
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		res = final.(update.ImportModel).Result()
		if err := update.Persist(ctx, book, res.UnsavedTasks, res.UnsavedLater); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	if len(res.Tasks) == 0 && len(res.Later) == 0 {
		printOK(out, "nothing imported")
		return nil
	}
	printOK(out, "imported %d task(s), %d to later", len(res.Tasks), len(res.Later))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

type exportOptions struct {
	date   string
	output string
}

func addExport(topLevel *cobra.Command, a *app) {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as CSV.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}
	cmd.Flags().StringVar(&o.date, "date", "", "Only export this day.")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Write to a file instead of stdout.")
	topLevel.AddCommand(cmd)
}

func (a *app) runExport(ctx context.Context, out io.Writer, o *exportOptions) error {
	state, err := a.load(ctx)
	if err != nil {
		return err
	}
	var tasks []model.Task
	if o.date != "" {
		day, err := a.resolveDay(o.date)
		if err != nil {
			return err
		}
		tasks = state.Day(day, "")
	} else {
		tasks = state.Sorted()
	}
	text := csvcodec.Serialize(tasks)
	if o.output == "" {
		_, err := io.WriteString(out, text)
		return err
	}
	if err := os.WriteFile(o.output, []byte(text), 0o644); err != nil {
		return err
	}
	printOK(out, "wrote %d task(s) to %s", len(tasks), o.output)
	return nil
}
