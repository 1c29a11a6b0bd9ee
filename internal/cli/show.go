package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cperrin88/envpkgsearch/pkg/cache"
	"github.com/cperrin88/envpkgsearch/pkg/discovery"
	"github.com/cperrin88/envpkgsearch/pkg/environment"
	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID|EXECUTABLE",
		Short: "Show one cached environment",
		Long: `Print a cached environment as JSON.

The environment is looked up by its ID (as printed by "list") or by the
path of its interpreter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.OutOrStdout(), args[0])
		},
	}

	return cmd
}

func runShow(out io.Writer, ref string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := loadStore(cfg)
	if err != nil {
		return err
	}

	env := findEnvironment(store, ref)
	if env == nil {
		return fmt.Errorf("%q: %w", ref, errors.ErrEnvironmentNotFound)
	}

	return writeJSON(out, env)
}

// findEnvironment resolves ref as an environment ID, then as an interpreter
// path relative to the working directory.
func findEnvironment(store *cache.Store, ref string) *environment.Environment {
	if env := store.Find(ref); env != nil {
		return env
	}
	if !strings.ContainsRune(ref, filepath.Separator) && !strings.ContainsRune(ref, '/') {
		return nil
	}
	path, err := filepath.Abs(ref)
	if err != nil {
		return nil
	}
	return store.FindByExecutable(discovery.DefaultNormalizer().Normalize(path))
}
