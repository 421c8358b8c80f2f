package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ebarkhatov/unihttp/internal/app"
	"github.com/ebarkhatov/unihttp/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var downloadCmd = &cobra.Command{
	Use:   "download URL",
	Short: "Download a resource to a file with a progress bar.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
		}

		outputPath, _ := cmd.Flags().GetString("output")

		app.ExecuteDownloadCommand(cmd.Context(), appConfig, args[0], outputPath)
	},
}

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var uploadCmd = &cobra.Command{
	Use:   "upload URL",
	Short: "Upload a file with upload progress reporting.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
		}

		inputPath, _ := cmd.Flags().GetString("file")

		app.ExecuteUploadCommand(cmd.Context(), appConfig, args[0], inputPath)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	downloadCmd.Flags().StringP(
		"output",
		"o",
		"",
		"path to save the downloaded file.")

	downloadCmd.Flags().StringP(
		"speed-limit",
		"s",
		"",
		"download speed limit, for example: 500KB, 1MB.")

	_ = downloadCmd.MarkFlagRequired("output")

	uploadCmd.Flags().StringP(
		"file",
		"f",
		"",
		"path to the file to upload.")

	_ = uploadCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(downloadCmd, uploadCmd)
}
