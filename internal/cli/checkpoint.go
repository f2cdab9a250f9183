package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmarchante/relvet/internal/checkpoint"
	"github.com/dmarchante/relvet/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkpointFile string

// checkpointCmd represents the checkpoint command
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or reset verification progress",
	Long: `Manage the checkpoint file that records which relationship records
have already been verified. Resetting it causes the next run to verify
everything from scratch.`,
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cp := checkpoint.NewFileStore(checkpointLocation(), zerolog.Nop()).Load()

		if cp.TotalProcessed() == 0 {
			fmt.Println("No progress recorded yet.")
			return nil
		}

		data, err := json.MarshalIndent(cp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal checkpoint: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var checkpointResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all recorded progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := checkpointLocation()
		if _, err := checkpoint.NewFileStore(path, zerolog.Nop()).Reset(); err != nil {
			return fmt.Errorf("reset checkpoint: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Checkpoint reset: %s\n", path)
		return nil
	},
}

// checkpointLocation resolves the checkpoint path from the flag, the
// config file, or the default, in that order.
func checkpointLocation() string {
	if checkpointFile != "" {
		return checkpointFile
	}
	if path := viper.GetString("checkpoint.path"); path != "" {
		return path
	}
	return model.DefaultConfig().Checkpoint.Path
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointResetCmd)

	checkpointCmd.PersistentFlags().StringVar(&checkpointFile, "checkpoint", "", "checkpoint file path")
}
