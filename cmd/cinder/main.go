// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command cinder inspects the user keys visible at a snapshot in a set of
// text segment files.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// flags holds the command line flags shared by all commands.
type flags struct {
	configPath string
	seqNum     string
	reverse    bool
	seek       string
	limit      int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:          "cinder [command] (flags)",
		Short:        "cinder snapshot iterator introspection tool",
		Long:         ``,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(
		&f.configPath, "config", "", "YAML file with iterator settings")

	scanCmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "print the key/value pairs visible at a snapshot",
		Long: `
Merge the segment files and print the user keys visible at the snapshot, one
row per key. Each segment file holds one internal entry per line in the form
<key>#<seq>,<kind>:<value>, where kind is SET or DEL.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, &f, args)
		},
	}
	dumpCmd := &cobra.Command{
		Use:   "dump <file>...",
		Short: "print the merged internal entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, &f, args)
		},
	}
	fingerprintCmd := &cobra.Command{
		Use:   "fingerprint <file>...",
		Short: "print a hash of the key/value pairs visible at a snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(cmd, &f, args)
		},
	}

	for _, cmd := range []*cobra.Command{scanCmd, fingerprintCmd} {
		cmd.Flags().StringVar(
			&f.seqNum, "seq", "inf", "snapshot sequence number (inf for the latest)")
		cmd.Flags().BoolVarP(
			&f.verbose, "verbose", "v", false, "print iterator stats")
	}
	for _, cmd := range []*cobra.Command{scanCmd, dumpCmd} {
		cmd.Flags().BoolVarP(
			&f.reverse, "reverse", "r", false, "iterate in reverse")
		cmd.Flags().IntVar(
			&f.limit, "limit", 0, "maximum number of rows to print (0 means unlimited)")
	}
	scanCmd.Flags().StringVar(
		&f.seek, "seek", "", "start at this key (the last key <= it when reversed)")

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(scanCmd, dumpCmd, fingerprintCmd)
	return rootCmd
}

func main() {
	log.SetFlags(0)

	if err := newRootCmd().Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
