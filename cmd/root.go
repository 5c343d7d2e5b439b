/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package cmd is the cobra file that enables borg-restore's command-line
// interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
)

// appLogger is used for logging events in borg-restore.
var appLogger = log15.New() //nolint:gochecknoglobals

var (
	configPath  string
	debug       bool
	updateCache bool
	destination string
	timeSpec    string
)

// RootCmd represents the base command when called without any subcommands.
// Apart from the info subcommand, borg-restore is driven by a bare
// positional <path> plus flags, mirroring the tool it accelerates restores
// for.
var RootCmd = &cobra.Command{
	Use:   "borg-restore [path]",
	Short: "Accelerate file-level restores from a borg backup repository.",
	Long: `borg-restore accelerates file-level restores from a borg backup
repository by maintaining a persistent path-to-per-archive-mtime index, so
finding which archives contain a path doesn't require scanning every
archive's listing.

Run with --update-cache to (re)synchronize the index with the repository's
current archives. Run with a positional path to find and restore it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		die(err.Error())
	}
}

func init() {
	appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StderrHandler))

	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	RootCmd.Flags().BoolVarP(&updateCache, "update-cache", "u", false,
		"synchronize the index with the repository's current archives before querying")
	RootCmd.Flags().StringVarP(&destination, "destination", "d", ".",
		"directory to restore the file into")
	RootCmd.Flags().StringVarP(&timeSpec, "time", "t", "",
		"select the newest archive older than this age (e.g. 5d, 1.5h)")
}

// cliPrint outputs the message to STDOUT.
func cliPrint(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, msg, a...)
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log a message at the Error level and exit non-zero.
func die(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}
