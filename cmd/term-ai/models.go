package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shapedthought/term-ai/internal/llm"
)

func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models available on the Ollama server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := resolve(opts)
			if err != nil {
				return err
			}

			client := llm.NewOllamaClient(s.endpoint, nil)
			names, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no models installed (try: ollama pull "+s.model+")")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
