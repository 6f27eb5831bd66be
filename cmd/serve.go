package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbparity/dbparity/internal/runner"
	"github.com/dbparity/dbparity/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the comparison API for the validation dashboard",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	r := runner.New(cfg, nil, logger)
	srv := server.New(cfg, r, logger)

	addr := listenAddr
	if addr == "" {
		addr = cfg.Listen
	}
	return srv.ListenAndServe(addr)
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config, :8080)")
}
