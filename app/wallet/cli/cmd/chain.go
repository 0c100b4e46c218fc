package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print every block in the chain",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) {
	var blocks []block
	if err := get("/v1/chain", &blocks); err != nil {
		log.Fatal(err)
	}

	printChain(os.Stdout, blocks)
}

func printChain(w io.Writer, blocks []block) {
	for _, blk := range blocks {
		fmt.Fprintf(w, "Block %d\n", blk.Index)
		fmt.Fprintf(w, "  Hash:      %s\n", blk.Hash)
		fmt.Fprintf(w, "  PrevHash:  %s\n", blk.PrevHash)
		fmt.Fprintf(w, "  Nonce:     %d\n", blk.Nonce)
		fmt.Fprintf(w, "  TimeStamp: %d\n", blk.TimeStamp)
		printTxs(w, blk.Transactions)
	}
}

func printTxs(w io.Writer, txs []tx) {
	for _, t := range txs {
		fmt.Fprintf(w, "  Tx %s\n", t.Hash)
		fmt.Fprintf(w, "    %s -> %s: %d\n", name(t.Sender, t.SenderName), name(t.Receiver, t.ReceiverName), t.Amount)
	}
}

func name(address string, name string) string {
	if name == "" || name == address {
		return address
	}
	return fmt.Sprintf("%s(%s)", name, address)
}
