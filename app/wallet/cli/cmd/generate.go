package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	address, err := generate()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(address)
}

// generate creates a new key file for the account. An existing key file is
// never overwritten.
func generate() (string, error) {
	path := getPrivateKeyPath()
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("key file %s already exists", path)
	}

	if err := os.MkdirAll(accountPath, 0755); err != nil {
		return "", err
	}

	privateKey, err := signature.GenerateKey()
	if err != nil {
		return "", err
	}

	if err := crypto.SaveECDSA(path, privateKey); err != nil {
		return "", err
	}

	return signature.Address(privateKey.PublicKey), nil
}
