package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/tableau"
)

func newLookupCmd(a *app) *cobra.Command {
	var req tableau.LookupRequest
	var auth string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve a datasource name to its LUID",
		Example: `  tableau-ai-bridge lookup --server https://tableau.example.com --site finance \
    --datasource "Sales" --auth pat --pat-name bridge --pat-secret "$PAT"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.AuthMethod = tableau.AuthMethod(auth)

			resolver := tableau.NewResolver(
				tableau.NewClient(a.cfg.Tableau, a.log),
				tableau.NewCache(a.cfg.Caching.DatasourceLUIDTTL()),
				a.log,
			)
			res, err := resolver.Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.LUID)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ServerURL, "server", "", "server URL, e.g. https://tableau.example.com")
	f.StringVar(&req.DatasourceName, "datasource", "", "published datasource name")
	f.StringVar(&req.SiteContentURL, "site", "", "site content URL (empty for the default site)")
	f.StringVar(&auth, "auth", string(tableau.AuthPAT), "auth method (pat|standard)")
	f.StringVar(&req.PATName, "pat-name", "", "personal access token name")
	f.StringVar(&req.PATSecret, "pat-secret", "", "personal access token secret")
	f.StringVar(&req.Username, "username", "", "username for standard auth")
	f.StringVar(&req.Password, "password", "", "password for standard auth")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("datasource")

	return cmd
}
