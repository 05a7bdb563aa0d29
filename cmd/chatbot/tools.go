package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-chatbot/internal/config"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

type catalogEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Mutates     bool           `json:"mutates,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

func newToolsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog the model sees, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			store := memory.NewStore(cfg.Memory.Capacity, cfg.OverflowPolicy())
			reg, err := tools.DefaultRegistry(tools.Deps{Memory: store, MapsAPIKey: cfg.Tools.MapsAPIKey})
			if err != nil {
				return err
			}

			var entries []catalogEntry
			for _, def := range reg.Catalog() {
				schema, err := def.SchemaMap()
				if err != nil {
					return fmt.Errorf("schema for %s: %w", def.Name, err)
				}
				entries = append(entries, catalogEntry{
					Name:        def.Name,
					Description: def.Description,
					Mutates:     def.Mutates,
					InputSchema: schema,
				})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
}
