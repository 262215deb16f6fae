package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ccerddap/internal/config"
)

// errInvalidConfig is returned after the issues have been printed.
var errInvalidConfig = errors.New("configuration is invalid")

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "cc-erddap [flags] <erddap_server>",
		Short: "Run the IOOS compliance checker over every dataset on an ERDDAP server.",
		Long: `cc-erddap reads the allDatasets catalog of an ERDDAP server, downloads a small
recent sample of each dataset and runs the compliance checker on it. One report
per dataset is written under <output_dir>/<server host>/.

Settings may also come from a config file (--config) or CC_ERDDAP_* environment
variables; flags win over both.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Server = args[0]
			}

			issues := config.Validate(cfg)
			for _, iss := range issues {
				fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				return errInvalidConfig
			}
			if validateOnly {
				fmt.Fprintln(stdout, "configuration is valid")
				return nil
			}

			log, err := newLogger(cfg, stderr)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, log, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	return cmd
}

// newLogger builds the diagnostics logger. Console progress is written to
// stdout separately; logs always go to w.
func newLogger(cfg config.Config, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}
	return log, nil
}
