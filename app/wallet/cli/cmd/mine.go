package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var nodeMiner bool

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a block from the pending transactions",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().BoolVarP(&nodeMiner, "node-miner", "n", false, "Pay the reward to the node's miner instead of this account.")
}

func mineRun(cmd *cobra.Command, args []string) {
	req := struct {
		Miner string `json:"miner"`
	}{}

	if !nodeMiner {
		_, address, err := loadAccount()
		if err != nil {
			log.Fatal(err)
		}
		req.Miner = address
	}

	var blk block
	if err := post("/v1/mine", req, &blk); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Mined block %d: %s: txs[%d]\n", blk.Index, blk.Hash, len(blk.Transactions))
}
