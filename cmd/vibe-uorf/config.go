package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-uorf/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-uorf configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-uorf.yaml.",
		Example: `  vibe-uorf config                                  # show effective config
  vibe-uorf config set filter.min_length 30          # ignore short uORFs
  vibe-uorf config set filter.start_codons ATG,CTG   # report near-cognate starts
  vibe-uorf config get filter.min_length             # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Comma-separated values are stored as lists.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

// runConfigShow prints the effective configuration, defaults included.
func runConfigShow(out io.Writer) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	_, err = out.Write(data)
	return err
}

// parseConfigValue maps a command-line string to a bool, int, list or string.
func parseConfigValue(value string) any {
	switch value {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if strings.Contains(value, ",") {
		var list []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		return list
	}
	return value
}

func runConfigSet(out io.Writer, key, value string) error {
	// Validate against a copy so a bad value never reaches the file.
	trial := viper.New()
	config.SetDefaults(trial)
	if err := trial.MergeConfigMap(viper.AllSettings()); err != nil {
		return fmt.Errorf("copying config: %w", err)
	}
	parsed := parseConfigValue(value)
	trial.Set(key, parsed)
	if _, err := config.Load(trial); err != nil {
		return usageError{err}
	}

	viper.Set(key, parsed)
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		return fmt.Errorf("cannot determine config file location")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

func runConfigGet(out io.Writer, key string) error {
	if !viper.IsSet(key) {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(out, viper.Get(key))
	return nil
}
