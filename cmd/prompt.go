package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/summarize"
)

func newPromptCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt a summarize request would produce",
		Example: `  tableau-ai-bridge prompt --file request.json
  cat request.json | tableau-ai-bridge prompt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			req, err := readRequest(in)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), summarize.NewPromptBuilderFromConfig(a.cfg.Prompt).Build(req))
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request JSON file (default: stdin)")
	return cmd
}

func readRequest(r io.Reader) (summarize.Request, error) {
	var req summarize.Request
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request json: %w", err)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
