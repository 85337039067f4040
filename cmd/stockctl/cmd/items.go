package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"stocklist-reconciliation-service/cmd/stockctl/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	itemsDatabaseFile string
	itemsShowHistory  bool
)

// itemsCmd represents the items command
var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List the stock list items",
	Long: `Items prints every item in the stock list in display order, with the
current quantity. With --history, each item's dated quantity
observations are printed underneath it.

Examples:
  stockctl items --db stock.db
  stockctl items --db stock.db --history`,
	RunE: runItems,
}

func init() {
	rootCmd.AddCommand(itemsCmd)

	itemsCmd.Flags().StringVar(&itemsDatabaseFile, "db", "", "path to the SQLite catalog")
	itemsCmd.Flags().BoolVar(&itemsShowHistory, "history", false, "show each item's quantity history")

	viper.BindPFlag("items-db", itemsCmd.Flags().Lookup("db"))
	viper.BindPFlag("items-history", itemsCmd.Flags().Lookup("history"))
}

func runItems(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	if err := executeItems(cmd); err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}

func executeItems(cmd *cobra.Command) error {
	ctx := cmd.Context()

	catalogStore, closeStore, err := config.OpenStore(itemsDatabaseFile)
	if err != nil {
		return err
	}
	defer closeStore()

	items, err := catalogStore.ListItems(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("The stock list is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tQUANTITY")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%d\n", item.Name, item.Quantity)

		if itemsShowHistory {
			history, err := catalogStore.ListObservations(ctx, item.ID)
			if err != nil {
				return err
			}
			for _, obs := range history {
				fmt.Fprintf(w, "  %s\t%d\n", obs.Date.Format("02/01/2006"), obs.Quantity)
			}
		}
	}
	return w.Flush()
}
