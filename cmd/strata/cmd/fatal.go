// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/oneconcern/strata/pkg/errors"
	kvstatus "github.com/oneconcern/strata/pkg/kv/status"
	persiststatus "github.com/oneconcern/strata/pkg/persist/status"
)

// patched by tests, so the CLI may be driven without exiting
var (
	logFatalln = log.Fatalln
	logFatalf  = log.Fatalf
	osExit     = os.Exit
)

var failure = color.New(color.FgRed, color.Bold).SprintFunc()

// hints suggest a remedy for errors which are not caused by the command line itself
var hints = []struct {
	err  error
	hint string
}{
	{kvstatus.ErrOpen, "check that no other strata process is using the data directory"},
	{persiststatus.ErrCorruptLog, "the change log in the data directory may be restored from a backup"},
	{persiststatus.ErrRestore, "the change log in the data directory does not replay against an empty repository"},
	{persiststatus.ErrCorruptSnapshot, "remove the snapshot and save it again"},
}

// wrapFatalln reports a failed action then exits
func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(failure("error:"), msg)
		return
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			logFatalf("%s %v\n%s", failure("error:"), fmt.Errorf("%s: %w", msg, err), h.hint)
			return
		}
	}
	logFatalf("%s %v", failure("error:"), fmt.Errorf("%s: %w", msg, err))
}
