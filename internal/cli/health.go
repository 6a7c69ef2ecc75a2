package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/csheth/critic/internal/config"
	"github.com/csheth/critic/internal/perspective"
)

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the critique service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			client, err := a.client(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Service.HealthTimeout)
			defer cancel()
			start := time.Now()
			if err := client.Health(ctx); err != nil {
				return fmt.Errorf("service at %s is unavailable: %w", client.Endpoint(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s (%s)\n", client.Endpoint(), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func newPerspectivesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "perspectives",
		Short: "List the perspectives every argument is examined from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := perspective.Catalog()
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case config.FormatJSON:
				type entry struct {
					Key         string `json:"key"`
					Label       string `json:"label"`
					Description string `json:"description"`
					Focus       string `json:"focus"`
				}
				entries := make([]entry, 0, len(catalog))
				for _, p := range catalog {
					entries = append(entries, entry{string(p.Key), p.Label, p.Description, p.Focus})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			case config.FormatText, "":
				for i, p := range catalog {
					fmt.Fprintf(out, "%d. %s %s\n   %s\n", i+1,
						headingStyle.Render(p.Label),
						subtleStyle.Render("("+string(p.Key)+")"),
						p.Description+": "+p.Focus)
				}
				return nil
			default:
				return fmt.Errorf("unsupported output format: %s", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", config.FormatText, "output format: text or json")
	return cmd
}
