package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"omnibot/config"
)

func Execute() error {
	return newRootCmd(wireApp).Execute()
}

// cli carries what every subcommand needs to build the app once flags are
// parsed.
type cli struct {
	v          *viper.Viper
	configFile string
	envFile    string
	wire       wireFunc
}

func (c *cli) app() (*app, error) {
	cfg, err := config.Load(c.v, c.configFile, c.envFile)
	if err != nil {
		return nil, err
	}
	return c.wire(cfg)
}

func newRootCmd(wire wireFunc) *cobra.Command {
	c := &cli{v: config.New(), wire: wire}

	rootCmd := &cobra.Command{
		Use:           "omnibot",
		Short:         "OmniBot: ask several AI models the same question at once",
		Long:          "omnibot fans one prompt out to every selected model behind an OpenAI-compatible gateway and shows each answer side by side, in the browser (serve) or on the terminal (ask).",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./omnibot.toml, then the user config dir)")
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().String("prefs-backend", "", "preferences backend: file or sqlite")
	rootCmd.PersistentFlags().String("prefs-path", "", "preferences file or database path")
	rootCmd.PersistentFlags().String("tasks-file", "", "YAML file replacing the built-in task presets")
	_ = c.v.BindPFlag(config.KeyPrefsBackend, rootCmd.PersistentFlags().Lookup("prefs-backend"))
	_ = c.v.BindPFlag(config.KeyPrefsPath, rootCmd.PersistentFlags().Lookup("prefs-path"))
	_ = c.v.BindPFlag(config.KeyTasksFile, rootCmd.PersistentFlags().Lookup("tasks-file"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(c),
		newAskCmd(c),
		newModelsCmd(c),
		newTasksCmd(c),
	)

	return rootCmd
}
