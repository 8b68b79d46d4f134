package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/loykin/mdmrepo"
	"github.com/loykin/mdmrepo/internal/common"
	"github.com/loykin/mdmrepo/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "mdmrepo",
	Short:         "Store and fetch munki repository items on the SimpleMDM plugin API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the optional YAML document and layers flag and
// environment overrides from viper on top of it.
func loadConfig(v *viper.Viper) (*ConfigDoc, error) {
	var doc ConfigDoc
	if p, ok := util.TrimEmptyCheck(v.GetString("config")); ok {
		if err := doc.Load(p); err != nil {
			return nil, err
		}
	}
	overrides := map[string]interface{}{}
	for _, key := range []string{
		"env_file",
		"repo.base_url", "repo.transport", "repo.curl_path", "repo.config_file", "repo.temp_dir",
		"logging.level", "logging.format",
	} {
		overrides[key] = v.GetString(key)
	}
	if err := doc.Overlay(overrides); err != nil {
		return nil, err
	}
	return &doc, nil
}

// openRepo is swapped out in tests.
var openRepo = func(v *viper.Viper) (mdmrepo.Repository, error) {
	doc, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	logger, err := doc.SetupLogging()
	if err != nil {
		return nil, err
	}
	if f, ok := util.TrimEmptyCheck(doc.EnvFile); ok {
		if err := godotenv.Load(f); err != nil {
			return nil, err
		}
		logger.Debug("loaded env file", "path", f)
	}
	opts, err := doc.Options(logger)
	if err != nil {
		return nil, err
	}
	return mdmrepo.New(opts)
}

func init() {
	v := viper.GetViper()
	v.SetDefault("config", "")
	v.SetDefault("repo.transport", mdmrepo.TransportNative)
	v.SetDefault("logging.level", "info")

	// Environment variables support: MDMREPO_CONFIG, MDMREPO_REPO_BASE_URL, ...
	v.SetEnvPrefix("MDMREPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("config", v.GetString("config"), "path to a config yaml")
	pf.String("env-file", "", "dotenv file loaded before the API key is resolved")
	pf.String("base-url", "", "vendor endpoint (default $SIMPLEMDM_BASE_URL or the SimpleMDM plugin URL)")
	pf.String("transport", v.GetString("repo.transport"), "http transport: native or curl")
	pf.String("curl-path", "", "curl binary used by the curl transport")
	pf.String("plist", "", "preferences plist holding the API key")
	pf.String("temp-dir", "", "directory for staged request bodies")
	pf.String("log-level", v.GetString("logging.level"), "error, warn, info or debug")
	pf.String("log-format", "", "text, json or color")

	_ = v.BindPFlag("config", pf.Lookup("config"))
	_ = v.BindPFlag("env_file", pf.Lookup("env-file"))
	_ = v.BindPFlag("repo.base_url", pf.Lookup("base-url"))
	_ = v.BindPFlag("repo.transport", pf.Lookup("transport"))
	_ = v.BindPFlag("repo.curl_path", pf.Lookup("curl-path"))
	_ = v.BindPFlag("repo.config_file", pf.Lookup("plist"))
	_ = v.BindPFlag("repo.temp_dir", pf.Lookup("temp-dir"))
	_ = v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(makecatalogsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		common.LogError("command failed", err)
		os.Exit(1)
	}
}
