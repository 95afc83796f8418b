package cli

import (
	"os"

	"github.com/lunagic/themis/themis"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	EnvFiles []string
	Engine   string
	NoColor  bool
}

// NewRootCommand creates the themis command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "themis",
		Short:         "Render and run database queries described in YAML",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.NoColor {
				pterm.DisableStyling()
			}
		},
	}

	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, "dotenv files to load, later files win")
	cmd.PersistentFlags().StringVar(&opts.Engine, "engine", "", "database engine (sqlite|mysql|postgres), overrides APP_DRIVER_DATABASE")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable styled output")

	cmd.AddCommand(NewDDLCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

func (opts *RootOptions) config() (themis.AppConfig, error) {
	config, err := themis.LoadConfig(opts.EnvFiles...)
	if err != nil {
		return themis.AppConfig{}, err
	}

	if opts.Engine != "" {
		config.AppDriverDatabase = opts.Engine
	}

	return config, nil
}

func decodeFile[T any](path string) (T, error) {
	var target T

	content, err := os.ReadFile(path)
	if err != nil {
		return target, err
	}

	if err := yaml.Unmarshal(content, &target); err != nil {
		return target, err
	}

	return target, nil
}
