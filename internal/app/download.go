package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/ebarkhatov/unihttp/internal/client"
	"github.com/ebarkhatov/unihttp/internal/config"
	"github.com/ebarkhatov/unihttp/internal/constants"
	"github.com/ebarkhatov/unihttp/internal/logger"
	"github.com/ebarkhatov/unihttp/internal/transport"
)

// ExecuteDownloadCommand downloads the resource at url into outputPath,
// rendering a progress bar. The body lands in a temporary .part file first
// and is renamed into place only after the download completes.
func ExecuteDownloadCommand(ctx context.Context, cfg *config.Config, url, outputPath string) {
	c, err := client.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize client: %v", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err = os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
			logger.Fatalf(ctx, "Failed to create output directory: %v", err)
		}
	}

	bar := newDownloadBar()
	startedAt := time.Now()

	body, err := c.DownloadWithProgress(ctx, url,
		func(transferred, total int64) {
			if total != transport.TotalUnknown {
				bar.ChangeMax64(total)
			}

			_ = bar.Set64(transferred)
		},
		nil)

	_ = bar.Finish()

	if err != nil {
		reportRequestFailure(ctx, err)
		return
	}

	tempPath := outputPath + constants.PartFileExtension

	if err = os.WriteFile(tempPath, body, constants.DefaultFilePermissions); err != nil {
		logger.Fatalf(ctx, "Failed to write temporary file: %v", err)
	}

	if err = os.Rename(tempPath, outputPath); err != nil {
		// Best-effort cleanup, the download itself already failed to land.
		_ = os.Remove(tempPath)

		logger.Fatalf(ctx, "Failed to move file into place: %v", err)
	}

	elapsed := time.Since(startedAt)

	logger.Infof(ctx, "Saved %s to '%s' in %s (%s/s)",
		humanize.Bytes(uint64(len(body))),
		outputPath,
		elapsed.Round(time.Millisecond),
		humanize.Bytes(uint64(bytesPerSecond(len(body), elapsed))))
}

// ExecuteUploadCommand uploads the file at inputPath to url, rendering an
// upload progress bar, and writes the response body to stdout.
func ExecuteUploadCommand(ctx context.Context, cfg *config.Config, url, inputPath string) {
	c, err := client.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize client: %v", err)
	}

	body, err := os.ReadFile(inputPath)
	if err != nil {
		logger.Fatalf(ctx, "Failed to read input file: %v", err)
	}

	bar := newUploadBar(int64(len(body)))
	startedAt := time.Now()

	envelope, err := c.UploadWithProgress(ctx, url, body,
		func(transferred, _ int64) {
			_ = bar.Set64(transferred)
		},
		nil)

	_ = bar.Finish()

	if err != nil {
		reportRequestFailure(ctx, err)
		return
	}

	responseBody, err := envelope.Bytes()
	if err != nil {
		logger.Fatalf(ctx, "Failed to read response body: %v", err)
	}

	logger.Infof(ctx, "Uploaded %s in %s: %s",
		humanize.Bytes(uint64(len(body))),
		time.Since(startedAt).Round(time.Millisecond),
		envelope.Status)

	if len(responseBody) > 0 {
		_, _ = os.Stdout.Write(responseBody)
	}
}

// newDownloadBar builds a byte-denominated progress bar for downloads.
// The bar stays silent outside plain info verbosity so debug dumps and quiet
// runs keep a clean terminal.
func newDownloadBar() *progressbar.ProgressBar {
	if logger.Level() > zap.InfoLevel || logger.IsDebugLevel() {
		return progressbar.DefaultBytesSilent(transport.TotalUnknown, "Downloading")
	}

	return progressbar.DefaultBytes(transport.TotalUnknown, "Downloading")
}

// newUploadBar builds a byte-denominated progress bar for uploads.
func newUploadBar(total int64) *progressbar.ProgressBar {
	if logger.Level() > zap.InfoLevel || logger.IsDebugLevel() {
		return progressbar.DefaultBytesSilent(total, "Uploading")
	}

	return progressbar.DefaultBytes(total, "Uploading")
}

// bytesPerSecond guards against division by zero on sub-millisecond transfers.
func bytesPerSecond(n int, elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return int64(n)
	}

	return int64(float64(n) / elapsed.Seconds())
}
