package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Print the transactions waiting to be mined",
	Run:   pendingRun,
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}

func pendingRun(cmd *cobra.Command, args []string) {
	var txs []tx
	if err := get("/v1/tx/pending", &txs); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Pending: %d\n", len(txs))
	printTxs(os.Stdout, txs)
}
