package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	goFlow "github.com/MrEthical07/goFlow"
)

func newRoutesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the page route of every flow and lint the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := engineConfig(v)
			if err != nil {
				return err
			}
			return printRoutes(cmd.OutOrStdout(), cfg)
		},
	}
}

func printRoutes(out io.Writer, cfg goFlow.Config) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FLOW\tROUTE\tAPI")
	for _, kind := range []goFlow.FlowType{
		goFlow.FlowLogin,
		goFlow.FlowRegistration,
		goFlow.FlowRecovery,
		goFlow.FlowVerification,
		goFlow.FlowSettings,
	} {
		fmt.Fprintf(w, "%s\t%s?%s=<id>\t/api/flows/%s\n", kind, cfg.Routes.ForType(kind), cfg.Routes.FlowQueryParam, kind)
	}
	fmt.Fprintf(w, "error\t%s\t\n", cfg.Routes.Error)
	fmt.Fprintf(w, "default\t%s\t\n", cfg.Routes.DefaultRedirect)
	if err := w.Flush(); err != nil {
		return err
	}

	for _, lw := range cfg.Lint() {
		fmt.Fprintf(out, "warning: %s: %s\n", lw.Code, lw.Message)
	}
	return nil
}
