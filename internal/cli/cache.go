package cli

import (
	"fmt"
	"io"

	"github.com/cperrin88/envpkgsearch/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the environment cache",
		Long:  "Clean, show information about, and locate the environment cache",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the environment cache",
		Long:  "Remove every cached environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd.OutOrStdout())
		},
	}

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the location, size and entry count of the environment cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheInfo(cmd.OutOrStdout())
		},
	}

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "path",
		Aliases: []string{"dir"},
		Short:   "Show cache directory path",
		Long:    "Display the path to the cache directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheDir(cmd.OutOrStdout())
		},
	}

	return cmd
}

func newCacheOperation() (*cache.Operation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	manager, err := newCacheManager(cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewOperation(manager), nil
}

func runCacheClean(out io.Writer) error {
	cacheOp, err := newCacheOperation()
	if err != nil {
		return err
	}

	message, err := cacheOp.Clean()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, message)
	return nil
}

func runCacheInfo(out io.Writer) error {
	cacheOp, err := newCacheOperation()
	if err != nil {
		return err
	}

	info, err := cacheOp.GetInfo()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, info)
	return nil
}

func runCacheDir(out io.Writer) error {
	cacheOp, err := newCacheOperation()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, cacheOp.GetDirectory())
	return nil
}
