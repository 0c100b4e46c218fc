package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

type balance struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	_, address, err := loadAccount()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("For Account:", address)

	var bal balance
	if err := get("/v1/balance/"+address, &bal); err != nil {
		log.Fatal(err)
	}

	fmt.Println(bal.Balance)
}
