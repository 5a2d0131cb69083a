package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/qrz-gateway/internal/api"
	"github.com/JakeFAU/qrz-gateway/internal/app"
)

func newOpenAPICmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:         "openapi",
		Short:       "Prints the OpenAPI document",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipAppAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := api.BuildDocument(app.Info(version)).Render(format)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return fmt.Errorf("write document: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: json or yaml")
	return cmd
}
