package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gallery/src/client"
	"gallery/src/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log *logrus.Entry

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "galleryctl",
		Short:         "Log in to the image gallery, submit images and browse the gallery",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(configFile); err != nil {
				return err
			}
			log = logging.New(viper.GetString("log-level"), "text").WithField("service", "galleryctl")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ~/.gallery.yaml)")
	flags.String("cognito-domain", "", "Cognito hosted UI domain, e.g. https://gallery.auth.eu-west-2.amazoncognito.com")
	flags.String("client-id", "", "Cognito app client id")
	flags.String("redirect-url", "http://localhost:3000/callback", "OAuth redirect URL served by the login listener")
	flags.String("logout-url", "http://localhost:3000", "where the provider sends the browser after logout")
	flags.String("image-api", "", "image service base URL")
	flags.String("user-api", "", "user service base URL")
	flags.String("session", "", "session file (default ~/.config/gallery/session.json)")
	flags.String("log-level", "warn", "log level")
	_ = viper.BindPFlags(flags)

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newSubmitCmd(),
		newGalleryCmd(),
		newCorsCmd(),
		newDBCmd(),
	)
	return root
}

// loadConfig layers GALLERY_* variables and an optional YAML file under the
// command line flags.
func loadConfig(configFile string) error {
	viper.SetEnvPrefix("GALLERY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("yaml")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.SetConfigFile(filepath.Join(home, ".gallery.yaml"))
	}
	if err := viper.ReadInConfig(); err != nil {
		if configFile != "" {
			return fmt.Errorf("can not read config %s: %w", configFile, err)
		}
	}
	return nil
}

func sessionStore() (*client.FileStore, error) {
	path := viper.GetString("session")
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return client.NewFileStore(path), nil
}

func requireSetting(key string) (string, error) {
	value := viper.GetString(key)
	if value == "" {
		return "", fmt.Errorf("--%s (or GALLERY_%s) is required", key, strings.ToUpper(strings.ReplaceAll(key, "-", "_")))
	}
	return value, nil
}

func pkceFlow() (*client.PKCEFlow, error) {
	domain, err := requireSetting("cognito-domain")
	if err != nil {
		return nil, err
	}
	clientID, err := requireSetting("client-id")
	if err != nil {
		return nil, err
	}
	return client.NewPKCEFlow(domain, clientID, viper.GetString("redirect-url")), nil
}

// apiClient loads the stored session and points an API client at the
// configured services.
func apiClient() (*client.API, error) {
	store, err := sessionStore()
	if err != nil {
		return nil, err
	}
	session, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: run galleryctl login", err)
	}
	return client.NewAPI(viper.GetString("image-api"), viper.GetString("user-api"), session, nil), nil
}
