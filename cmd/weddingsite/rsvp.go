package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"weddingsite/internal/repos"
	"weddingsite/internal/services"
)

func rsvpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsvp",
		Short: "Guest list tools",
	}
	cmd.AddCommand(rsvpExportCmd())
	return cmd
}

func rsvpExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every RSVP as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return services.NewRSVPService(repos.NewRSVPRepo(db), nil).ExportCSV(cmd.Context(), w)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
