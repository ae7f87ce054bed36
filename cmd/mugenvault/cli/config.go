package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	envFiles   = []string{".env", ".env.local"}
	configDirs = []string{".", "./config", "/etc/mugenvault", "$HOME/.mugenvault"}
)

func initConfig(path string) error {
	loadEnvFiles(".")

	if path != "" {
		viper.SetConfigFile(path)
		loadEnvFiles(filepath.Dir(path))
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		for _, dir := range configDirs {
			viper.AddConfigPath(dir)
		}
		loadEnvFiles(configDirs...)
	}

	viper.SetEnvPrefix("MUGENVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// loadEnvFiles loads every .env file found in dirs. Missing files are
// ignored and already set variables are never overridden.
func loadEnvFiles(dirs ...string) {
	for _, dir := range dirs {
		for _, envFile := range envFiles {
			envPath := filepath.Join(os.ExpandEnv(dir), envFile)
			_ = godotenv.Load(envPath)
		}
	}
}
