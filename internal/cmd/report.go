package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/taskban/taskban/internal/cmd/cmdutil"
	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/logging"
)

// ReportError prints a failed command's error to w. Store failures carry
// backend internals and are summarized; their detail goes to the debug log.
func ReportError(w io.Writer, err error) {
	flags := rootCmd.PersistentFlags()
	verbose, _ := flags.GetCount(cmdutil.FlagVerbose)
	quiet, _ := flags.GetBool(cmdutil.FlagQuiet)

	level := logging.LevelFromFlags(verbose, quiet, viper.GetString("logging.level"))
	reportError(w, err, level, viper.GetString("logging.format"))
}

func reportError(w io.Writer, err error, level, format string) {
	if errors.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	summary := "internal error"
	var storeErr *errors.StoreError
	if errors.As(err, &storeErr) {
		summary = "task store request failed"
		if storeErr.Backend != "" {
			summary = fmt.Sprintf("%s request failed", storeErr.Backend)
		}
	}
	fmt.Fprintf(w, "Error: %s (run with -vv for details)\n", summary)

	logger, logErr := logging.New(logging.Options{Level: level, Format: format, Writer: w})
	if logErr != nil {
		return
	}
	logger.Debug("command failed",
		"error", err.Error(),
		"severity", errors.GetSeverity(err).String())
}
