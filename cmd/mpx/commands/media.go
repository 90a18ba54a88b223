package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
	"github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
)

// UpdateResult summarises a media update.
type UpdateResult struct {
	Success    bool   `json:"success"         yaml:"success"`
	StatusCode int    `json:"status_code"     yaml:"status_code"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	URL        string `json:"url"             yaml:"url"`
}

// NewMediaCommand creates the media command group.
func NewMediaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Update media records",
		Long:  "Write media records through the MPX Media data service",
	}

	cmd.AddCommand(newMediaPutCommand())

	return cmd
}

func newMediaPutCommand() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "put FILE",
		Short: "Update media records from a JSON file",
		Long: `Send the JSON document in FILE ("-" for stdin) as a plural media update.
The document usually has the shape {"entries": [{"id": "...", ...}]}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readJSONDocument(cmd, args[0])
			if err != nil {
				return err
			}

			var resp *mpx.RawResponse

			err = withToken(cmd, func(token string, opts []mpxclient.Option) error {
				client, err := mpxclient.NewMediaClient(token, opts...)
				if err != nil {
					return err
				}

				resp, err = client.PutPluralJSON(cmd.Context(), toValues(params), body)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to update media: %w", err)
			}

			result := UpdateResult{
				Success:    mpx.IsResponseSuccessful(resp),
				StatusCode: resp.StatusCode,
				URL:        mpx.RedactURL(resp.URL),
			}
			if !result.Success {
				result.Error = mpx.ResponseError(resp)
			}

			done, err := printStructured(cmd.OutOrStdout(), result)
			if !done {
				err = renderTable(cmd.OutOrStdout(), []string{"Property", "Value"}, [][]string{
					{"Success", fmt.Sprintf("%t", result.Success)},
					{"Status", fmt.Sprintf("%d", result.StatusCode)},
					{"Error", valueOrNA(result.Error)},
				})
			}

			if err != nil {
				return err
			}

			if !result.Success {
				return fmt.Errorf("%w: %s", ErrUpdateFailed, result.Error)
			}

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&params, "param", nil, "extra query parameters (key=value), e.g. account=...")

	return cmd
}

// readJSONDocument decodes the JSON document at path, or stdin for "-".
func readJSONDocument(cmd *cobra.Command, path string) (interface{}, error) {
	reader := cmd.InOrStdin()

	if path != "-" {
		// #nosec G304 -- path is supplied by the CLI user
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		defer func() {
			_ = file.Close()
		}()

		reader = file
	}

	var doc interface{}

	err := json.NewDecoder(reader).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return doc, nil
}
