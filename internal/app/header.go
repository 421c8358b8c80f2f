package app

import (
	"context"

	"github.com/ebarkhatov/unihttp/internal/config"
	"github.com/ebarkhatov/unihttp/internal/logger"
)

// ExecuteSetHeaderCommand persists one default header into the configuration
// file, creating the file when it does not exist yet.
func ExecuteSetHeaderCommand(ctx context.Context, key, value string) {
	if err := config.SaveDefaultHeader(key, value); err != nil {
		logger.Fatalf(ctx, "Failed to save default header: %v", err)
	}

	logger.Infof(ctx, "Default header '%s' saved", key)
}
