package database

import "strings"

// ShortAddress returns a shortened address for display. Wallet addresses are
// long hex encoded public keys which makes logs hard to read.
func ShortAddress(address string) string {
	const size = 10

	// Every uncompressed public key starts with the same marker so it
	// carries no information for the reader.
	trimmed := strings.TrimPrefix(address, "0x04")
	if trimmed == address || len(trimmed) <= size {
		return address
	}

	return trimmed[:size] + "..."
}
