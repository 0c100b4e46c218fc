package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	peerHost string
	peerPort int
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the peers known to the node",
	Run:   peersRun,
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the node to a peer",
	Run:   connectRun,
}

func init() {
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVar(&peerHost, "host", "localhost", "Host of the peer.")
	connectCmd.Flags().IntVar(&peerPort, "port", 0, "Peer port of the peer.")
	connectCmd.MarkFlagRequired("port")
}

func peersRun(cmd *cobra.Command, args []string) {
	var peers []struct {
		Host string `json:"host"`
	}
	if err := get("/v1/peers", &peers); err != nil {
		log.Fatal(err)
	}

	for _, p := range peers {
		fmt.Println(p.Host)
	}
}

func connectRun(cmd *cobra.Command, args []string) {
	req := struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}{
		Host: peerHost,
		Port: peerPort,
	}

	var resp status
	if err := post("/v1/peers/connect", req, &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Status)
}
