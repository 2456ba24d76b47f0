// Package main is the entry point for the snowdash CLI.
package main

import (
	"github.com/huangsam/snowdash/cmd"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	defer func() {
		if err := cmd.StopTracing(); err != nil {
			contract.LogWarn("Cannot flush traces", err)
		}
	}()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Cannot stop profiling", err)
		}
	}()
	if err := cmd.Execute(); err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Cannot run snowdash", err)
	}
}
