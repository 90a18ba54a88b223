package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mpx-client/pkg/mpx"
)

// NewUtilCommand creates the util command group.
func NewUtilCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "util",
		Short: "Media identifier helpers",
		Long:  "Convert between media URIs and numeric media ids",
	}

	cmd.AddCommand(newUtilExtractIDCommand())
	cmd.AddCommand(newUtilMediaURICommand())
	cmd.AddCommand(newUtilCustomValueCommand())

	return cmd
}

func newUtilExtractIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract-id URI",
		Short: "Print the numeric id of a media URI",
		Long:  "Print the trailing numeric identifier of a media URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := mpx.ExtractID(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)

			return err
		},
	}
}

func newUtilMediaURICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "media-uri ID",
		Short: "Print the media URI of a numeric id",
		Long:  "Print the fully-qualified media URI for a numeric media id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("%w: %q", mpx.ErrInvalidMediaID, args[0])
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), mpx.BuildMediaURI(id))

			return err
		},
	}
}

func newUtilCustomValueCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "custom-value KEY=VALUE...",
		Short: "Build a custom-field filter value",
		Long:  `Render KEY=VALUE pairs as a custom-field filter value such as "{k1}{v1},{k2}{v2}"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping := make(map[string]string, len(args))

			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("%w: %q", ErrInvalidPair, arg)
				}

				mapping[key] = value
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), mpx.BuildCustomValue(mapping, prefix))

			return err
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "namespace prefix substituted for %s in keys")

	return cmd
}
