package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the node's chain",
	Run:   validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) {
	var resp struct {
		Valid  bool   `json:"valid"`
		Length int    `json:"length"`
		Index  uint64 `json:"index"`
		Error  string `json:"error"`
	}

	if err := get("/v1/chain/validate", &resp); err != nil {
		log.Fatal(err)
	}

	if !resp.Valid {
		fmt.Printf("Chain is invalid at block %d: %s\n", resp.Index, resp.Error)
		os.Exit(1)
	}

	fmt.Printf("Chain is valid: blocks[%d]\n", resp.Length)
}
