package cmd

import (
	"crypto/ecdsa"
	"fmt"
	"log"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	to    string
	value uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, _, err := loadAccount()
		if err != nil {
			log.Fatal(err)
		}

		resp, err := send(privateKey, to, value)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%s: %s\n", resp.Status, resp.Hash)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the receiver.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.MarkFlagRequired("to")
}

// send signs a transaction from the account to the receiver and submits it
// to the node.
func send(privateKey *ecdsa.PrivateKey, to string, value uint64) (status, error) {
	tx := database.NewTx(signature.Address(privateKey.PublicKey), to, value)

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		return status{}, err
	}

	var resp status
	if err := post("/v1/tx/submit", signedTx, &resp); err != nil {
		return status{}, err
	}

	return resp, nil
}
