package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"mamdani/internal/membership"
	"mamdani/pkg/mamdani"
)

func newMembershipCmd(a *app) *cobra.Command {
	var (
		lo, hi float64
		points int
	)
	cmd := &cobra.Command{
		Use:   "membership <kind> <param>...",
		Short: "Sample a membership function shape",
		Long:  "Sample a membership function shape. Known kinds: " + strings.Join(membership.Kinds(), ", "),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			params := make([]float64, 0, len(args)-1)
			for _, raw := range args[1:] {
				v, err := cast.ToFloat64E(raw)
				if err != nil {
					return fmt.Errorf("parameter %q: %w", raw, err)
				}
				params = append(params, v)
			}
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			samples, err := client.Membership(mamdani.MembershipRequest{Kind: args[0], Params: params, Min: lo, Max: hi, Points: points})
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.Encode(samples)
			}
			for _, s := range samples {
				a.out.Printf("%10.4f %.6f %s\n", s.X, s.Degree, strings.Repeat("#", int(s.Degree*40+0.5)))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lo, "min", 0, "range start")
	cmd.Flags().Float64Var(&hi, "max", 1, "range end")
	cmd.Flags().IntVar(&points, "points", 21, "number of samples")
	return cmd
}
