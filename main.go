// main holds the entry logic for the debtlens CLI.
package main

import (
	"github.com/huangsam/debtlens/cmd"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Error", err)
	}
}
