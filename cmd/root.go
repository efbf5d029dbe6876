package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile    string
	workingDir string
	verbose    bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "simhound",
	Short: "Structural code-clone detector for multi-language repositories",
	Long: `simhound finds structurally similar regions of code across a repository.

It parses source files into ASTs, normalizes them with a language-aware rule
set (renaming identifiers, dropping comments, collapsing imports), shingles
the normalized tree, sketches each region with MinHash, and groups candidates
via LSH banding. A second pass slides a fixed-size window over whatever code
the first pass left unmatched, to catch near-duplicate runs of lines that
never line up with a function or class boundary.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = newLogger(verbose)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.simhound.yaml)")
	rootCmd.PersistentFlags().StringVar(&workingDir, "cwd", "", "working directory for analysis (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".simhound")
	}

	viper.SetEnvPrefix("SIMHOUND")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// GetWorkingDir returns the directory to scan, honoring --cwd.
func GetWorkingDir() (string, error) {
	if workingDir == "" {
		return os.Getwd()
	}
	if workingDir == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}

	absPath, err := filepath.Abs(workingDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("working directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory is not a directory: %s", absPath)
	}
	return absPath, nil
}
