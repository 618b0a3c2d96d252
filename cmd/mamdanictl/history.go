package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mamdani/pkg/mamdani"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		profile string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded evaluations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := client.History(cmd.Context(), mamdani.HistoryRequest{Profile: profile, Limit: limit})
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.Encode(records)
			}
			if len(records) == 0 {
				a.out.Printf("no evaluations found\n")
				return nil
			}
			now := time.Now()
			for _, r := range records {
				a.out.Printf("id=%s profile=%s score=%.6f label=%s fired=%t inputs=[%s] recorded=%s\n",
					r.ID, r.Profile, r.Output, r.Label, r.Fired, formatInputs(r.Inputs), humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "only list this profile")
	cmd.Flags().IntVar(&limit, "limit", 20, "max evaluations to list")
	return cmd
}
