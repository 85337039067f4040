package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"stocklist-reconciliation-service/cmd/stockctl/config"
	"stocklist-reconciliation-service/internal/reconciler"
	"stocklist-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the import command
var (
	importFile   string
	databaseFile string
	threshold    float64
	outputFormat string
	assumeYes    bool
	showCatalog  bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import freeform stock counts into the stock list",
	Long: `Import parses pasted stock count text, matches each line against the
stock list by name similarity, and applies quantities. Lines that match
an existing item exactly are applied immediately; similar-but-not-equal
names prompt for a decision; unknown names create new items.

A date line anywhere in the text (dd/mm/yyyy, dd/mm/yy or dd/mm) dates
the whole batch and records per-item history.

Examples:
  # Import from a file into a SQLite catalog
  stockctl import --file counts.txt --db stock.db

  # Import from stdin
  cat counts.txt | stockctl import --db stock.db

  # Auto-accept every suggested match
  stockctl import --file counts.txt --db stock.db --yes

  # Tighter matching and JSON output
  stockctl import --file counts.txt --db stock.db --threshold 0.8 -f json`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "i", "", "path to the import text file (default: stdin)")
	importCmd.Flags().StringVar(&databaseFile, "db", "", "path to the SQLite catalog (default: in-memory)")
	importCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "similarity threshold override (0,1]")
	importCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "accept the best match for every ambiguous line")
	importCmd.Flags().BoolVar(&showCatalog, "show-catalog", false, "print the catalog after the import")

	viper.BindPFlag("file", importCmd.Flags().Lookup("file"))
	viper.BindPFlag("db", importCmd.Flags().Lookup("db"))
	viper.BindPFlag("threshold", importCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("output-format", importCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("yes", importCmd.Flags().Lookup("yes"))
	viper.BindPFlag("show-catalog", importCmd.Flags().Lookup("show-catalog"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	importFile = viper.GetString("file")
	databaseFile = viper.GetString("db")
	threshold = viper.GetFloat64("threshold")
	outputFormat = viper.GetString("output-format")
	assumeYes = viper.GetBool("yes")
	showCatalog = viper.GetBool("show-catalog")

	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be in (0,1], got %v", threshold)
	}
	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format: %s (valid: console, json)", outputFormat)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	if err := executeImport(cmd.Context()); err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}

func executeImport(ctx context.Context) error {
	text, err := readImportText(importFile)
	if err != nil {
		return err
	}

	engineConfig, err := config.CreateEngineConfig(threshold)
	if err != nil {
		return err
	}

	catalogStore, closeStore, err := config.OpenStore(databaseFile)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := reconciler.NewEngine(catalogStore, engineConfig)
	if err != nil {
		return err
	}

	batch, stats := engine.StartImport(text)
	if batch.IsEmpty() {
		fmt.Fprintf(os.Stderr, "Nothing to import (%d lines read, none parseable)\n", stats.TotalLines)
		return nil
	}

	prompter := bufio.NewScanner(os.Stdin)
	outcome, err := engine.Run(ctx, batch)
	for err == nil && outcome.State == reconciler.StateAwaitingDecision {
		var decision reconciler.Decision
		if assumeYes {
			decision = reconciler.Decision{Kind: reconciler.DecisionSameItem}
		} else {
			decision = promptDecision(prompter, outcome.Cursor)
		}
		outcome, err = engine.Decide(ctx, outcome.Cursor, decision)
	}
	if err != nil {
		return err
	}

	report, err := reporter.NewReporter(config.CreateReportConfig(outputFormat, showCatalog))
	if err != nil {
		return err
	}

	catalog, err := catalogStore.ListItems(ctx)
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, outcome.Report, catalog)
}

// readImportText reads the import text from the given file, or from
// stdin when the path is empty or "-".
func readImportText(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read import file: %w", err)
	}
	return string(data), nil
}

// promptDecision shows the ambiguous line with its candidates and reads
// a decision from the terminal. Unrecognized input re-prompts.
func promptDecision(scanner *bufio.Scanner, cursor *reconciler.Cursor) reconciler.Decision {
	fmt.Printf("\n%q (qty %d) is similar to:\n", cursor.CurrentLine.OriginalName, cursor.CurrentLine.Quantity)
	for i, candidate := range cursor.Candidates {
		marker := " "
		if candidate.Item.ID == cursor.BestMatch.ID {
			marker = "*"
		}
		fmt.Printf("  %s[%d] %s (qty %d, %.0f%% similar)\n",
			marker, i+1, candidate.Item.Name, candidate.Item.Quantity, candidate.Score*100)
	}

	for {
		fmt.Print("[s]ame item, [n]ew item, [m]erge suggestions, [a]ll similar, s[k]ip, [c]ancel, or a number to change the match: ")
		if !scanner.Scan() {
			// EOF on stdin: stop prompting, drop the rest.
			return reconciler.Decision{Kind: reconciler.DecisionCancel}
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch input {
		case "s", "same":
			return reconciler.Decision{Kind: reconciler.DecisionSameItem}
		case "n", "new":
			return reconciler.Decision{Kind: reconciler.DecisionDifferentItem}
		case "m", "merge":
			return reconciler.Decision{Kind: reconciler.DecisionAcceptSuggestions}
		case "a", "all":
			return reconciler.Decision{Kind: reconciler.DecisionAcceptAllSimilar}
		case "k", "skip":
			return reconciler.Decision{Kind: reconciler.DecisionSkip}
		case "c", "cancel":
			return reconciler.Decision{Kind: reconciler.DecisionCancel}
		}

		if index, err := strconv.Atoi(input); err == nil {
			if index >= 1 && index <= len(cursor.Candidates) {
				return reconciler.Decision{Kind: reconciler.DecisionPromote, PromoteIndex: index - 1}
			}
		}

		fmt.Println("Unrecognized choice.")
	}
}
