// main is the entry point for the gmap CLI.
package main

import (
	"github.com/seeyebe/gmap/cmd"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseCaching()
		contract.LogFatal("gmap failed", err)
	}
}
