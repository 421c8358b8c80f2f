package cmd

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebarkhatov/unihttp/internal/app"
	"github.com/ebarkhatov/unihttp/internal/logger"
)

//nolint:gochecknoinits // Cobra requires the init function to register subcommands.
func init() {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		rootCmd.AddCommand(newRequestCommand(method))
	}
}

// newRequestCommand builds one method-named subcommand, e.g. "unihttp get URL".
func newRequestCommand(method string) *cobra.Command {
	use := strings.ToLower(method)

	command := &cobra.Command{
		Use:   use + " URL",
		Short: "Execute a " + method + " request and print the response body.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			body, _ := cmd.Flags().GetString("data")
			headers, _ := cmd.Flags().GetStringArray("header")

			app.ExecuteRequestCommand(cmd.Context(), appConfig, &app.RequestOptions{
				Method:  method,
				URL:     args[0],
				Body:    body,
				Headers: headers,
			})
		},
	}

	command.Flags().StringP(
		"data",
		"d",
		"",
		"raw request body.")

	command.Flags().StringArrayP(
		"header",
		"H",
		nil,
		"request header in 'Key: Value' form, repeatable.")

	return command
}
