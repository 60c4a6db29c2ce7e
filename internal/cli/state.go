package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlaspack/pkg/pipeline"
	"github.com/matzehuels/atlaspack/pkg/state"
)

// stateFlags locate the snapshot of a pack run.
type stateFlags struct {
	outputDir string
	stateURL  string
}

func (f *stateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "d", pipeline.DefaultOutputDir, "output directory of the pack run")
	cmd.Flags().StringVar(&f.stateURL, "state-url", "", "state location: file path or redis:// URL")
}

func (f *stateFlags) location() string {
	return stateLocation(f.outputDir, f.stateURL)
}

func (f *stateFlags) skipListPath() string {
	return filepath.Join(f.outputDir, pipeline.SkipListFile)
}

// stateCommand creates the state management command.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the state used by --append",
	}

	cmd.AddCommand(c.stateInfoCommand())
	cmd.AddCommand(c.statePathCommand())
	cmd.AddCommand(c.stateClearCommand())

	return cmd
}

// stateInfoCommand creates the "state info" subcommand.
func (c *CLI) stateInfoCommand() *cobra.Command {
	var f stateFlags
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Summarize the saved atlas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStateInfo(cmd.Context(), f.location())
		},
	}
	f.register(cmd)
	return cmd
}

func runStateInfo(ctx context.Context, loc string) error {
	store, err := state.Open(loc)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := state.LoadSnapshot(ctx, store)
	if err != nil {
		return err
	}
	if snap == nil {
		printInfo("No state at %s", loc)
		return nil
	}
	atlas, err := snap.Atlas(snap.ContainerSize)
	if err != nil {
		return err
	}

	printKeyValue("Atlas", snap.AtlasID)
	printKeyValue("Location", store.Location())
	printKeyValue("Format", "v"+strconv.Itoa(snap.Version))
	printKeyValue("Page size", fmt.Sprintf("%d×%d", snap.ContainerSize, snap.ContainerSize))
	printKeyValue("Saved", snap.SavedAt.Local().Format("2006-01-02 15:04:05"))
	printKeyValue("Textures", strconv.Itoa(len(snap.Records)))
	printKeyValue("Pages", strconv.Itoa(len(snap.Containers)))
	printContainerTable(summarizeContainers(atlas.Containers(), nil, nil))
	return nil
}

// statePathCommand creates the "state path" subcommand.
func (c *CLI) statePathCommand() *cobra.Command {
	var f stateFlags
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the state location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(f.location())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// stateClearCommand creates the "state clear" subcommand.
func (c *CLI) stateClearCommand() *cobra.Command {
	var f stateFlags
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved state and skip-list",
		Long: `Delete the saved state and skip-list so the next --append run starts a
new atlas. Pages and metadata in the output directory are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := state.Open(f.location())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear state: %w", err)
			}
			if err := os.Remove(f.skipListPath()); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove skip-list: %w", err)
			}
			printSuccess("Cleared state")
			printDetail("State: %s", store.Location())
			printDetail("Skip-list: %s", f.skipListPath())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
