// main is the entry point for the hfconf CLI.
package main

import (
	"fmt"
	"os"

	"github.com/hfconf/hfconf/cmd"
	"github.com/hfconf/hfconf/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	defer iocache.CloseStores()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		iocache.CloseStores()
		os.Exit(1)
	}
}
