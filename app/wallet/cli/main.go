// This program is the wallet and node client for a Corundum node.
package main

import "github.com/RyanLatimer/Corundum/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
