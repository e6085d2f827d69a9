package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmaher42/athens/internal/logger"
	"github.com/dmaher42/athens/pkg/collision"
)

func main() {
	logger.Setup()

	rootCmd := &cobra.Command{
		Use:           "walkmap",
		Short:         "Collision and walkability engine for GeoJSON city maps",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(probeCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate the project config and report ingestion diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := runValidate(cmd.Context(), cmd.OutOrStdout(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}
}

func buildCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "build [project-path]",
		Short: "Build the collision model and write the 2D scene as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd.OutOrStdout(), args[0], out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the scene to a file instead of stdout")
	return cmd
}

func probeCmd() *cobra.Command {
	var opts probeOptions

	cmd := &cobra.Command{
		Use:   "probe [project-path] x y",
		Short: "Report whether a planar position is walkable (use -- before negative coordinates)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.slopeSet = cmd.Flags().Changed("slope")
			if !cmd.Flags().Changed("threshold") {
				opts.threshold = collision.KeepThreshold
			}
			return runProbe(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.slope, "slope", 0, "attach a constant slope sampler with this value")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "slope threshold (default from config)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the HTTP walkability API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, args[0], port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (default from config)")
	return cmd
}
