package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cperrin88/envpkgsearch/pkg/environment"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var creatorFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached environments",
		Long: `List the environments recorded in the environment cache.

Environments are ordered by Python version, then by interpreter path.
Use --creator to show only environments created by one tool
(system, pyenv, conda, pipx, venv, unknown). Run "discover --save" to
populate the cache.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.OutOrStdout(), creatorFilter)
		},
	}

	cmd.Flags().StringVar(&creatorFilter, "creator", "", "Filter environments by creator")

	return cmd
}

func runList(out io.Writer, creatorFilter string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	creator := environment.Creator(creatorFilter)
	if creatorFilter != "" && !creator.IsKnown() {
		return fmt.Errorf("unknown creator %q", creatorFilter)
	}

	store, err := loadStore(cfg)
	if err != nil {
		return err
	}

	envs := store.Filter(creator)
	if envs == nil {
		envs = []*environment.Environment{}
	}
	sortByVersion(envs)

	if jsonOutput(cfg) {
		return writeJSON(out, envs)
	}

	if len(envs) == 0 {
		_, _ = fmt.Fprintln(out, "No environments cached")
		return nil
	}

	_, _ = fmt.Fprintln(out, renderEnvironmentTable(envs, !cfg.Settings.NoColor))
	return nil
}

// sortByVersion orders environments by ascending Python version. Versions
// that do not parse sort last; ties fall back to the executable path.
func sortByVersion(envs []*environment.Environment) {
	sort.SliceStable(envs, func(i, j int) bool {
		vi, errI := envs[i].ParsedVersion()
		vj, errJ := envs[j].ParsedVersion()
		switch {
		case errI == nil && errJ == nil:
			if !vi.Equal(vj) {
				return vi.LessThan(vj)
			}
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}
		return envs[i].Executable < envs[j].Executable
	})
}

func renderEnvironmentTable(envs []*environment.Environment, color bool) string {
	rows := make([][]string, 0, len(envs))
	for _, env := range envs {
		version := env.Version
		if version == "" {
			version = "-"
		}
		rows = append(rows, []string{
			env.ID,
			string(env.Creator),
			version,
			strconv.Itoa(len(env.DetectedPackages)),
			env.Executable,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CREATOR", "VERSION", "PACKAGES", "EXECUTABLE").
		Rows(rows...)

	if color {
		t = t.BorderStyle(borderStyle).StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	} else {
		t = t.StyleFunc(func(_, _ int) lipgloss.Style {
			return plainCellStyle
		})
	}

	return t.String()
}
