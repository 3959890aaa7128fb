// Package cli は promo-kit コマンドを cobra で構成します。
package cli

import (
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shouni/gemini-promo-kit/pkg/config"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "promo-kit",
	Short: "Promotional storefront image generation on Vertex AI",
	Long: `promo-kit generates promotional images with Gemini on Vertex AI.

Run "promo-kit serve" for the HTTP API or "promo-kit generate" for a one-shot generation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

// Execute はルートコマンドを実行します。
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		DisableColors:   runtime.GOOS == "windows",
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "promo-kit.yaml", "config file (YAML, optional)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return exitWithCode(ExitConfig, err)
	}
	if verbose {
		cfg.Debug = true
	}
	log.SetLevel(cfg.GetLogLevel())
	return nil
}
