// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"github.com/CrawX/go-hammie/log"
)

func main() {
	log.InitLogging("info")
	logger := log.Logger(log.LOG_MAIN)

	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		logger.WithField("error", err).Fatal("Command failed")
	}
}
