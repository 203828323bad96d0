package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/osbdet/osbdetweb/catalog"
	"github.com/osbdet/osbdetweb/environment"
	"github.com/osbdet/osbdetweb/environment/command"
	"github.com/osbdet/osbdetweb/environment/redfish"
	"github.com/osbdet/osbdetweb/environment/wakeonlan"
	"github.com/osbdet/osbdetweb/shutdown"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", path.Join("/etc", fmt.Sprintf("%s.d", appName), "config.yaml"), "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "command", "backend used to start and stop the environment")
	rootCmd.PersistentFlags().StringVar(&catalogFilePath, "catalog", "", "YAML module catalog replacing the built-in one")
}

const (
	appName    = "osbdetweb"
	appVersion = "1.0.0"
)

var (
	configFilePath  string
	backendName     string
	catalogFilePath string
	rootCmd         = &cobra.Command{
		Use:     appName,
		Short:   "Information pages and power control for the OSBDET environment",
		Version: appVersion,
		Args:    cobra.NoArgs,
		Run:     run,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

type Config struct {
	Listen      string                 `yaml:"listen"`
	Username    string                 `yaml:"username" validate:"required_with=Password"`
	Password    string                 `yaml:"password" validate:"required_with=Username"`
	Images      string                 `yaml:"images"`
	Catalog     string                 `yaml:"catalog"`
	Environment map[string]interface{} `yaml:"environment"`
	Discord     *DiscordBotConfig      `yaml:"discord"`
}

func parseYAMLFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()
	config := Config{}
	decoder := yaml.NewDecoder(file)
	err = decoder.Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("error decoding YAML file %q: %w", filePath, err)
	}
	return &config, nil
}

func validateConfig(config *Config) error {
	validate := validator.New()
	err := validate.Struct(config)
	if err != nil {
		return err
	}
	if config.Listen == "" {
		config.Listen = ":3000"
	}
	if catalogFilePath != "" {
		config.Catalog = catalogFilePath
	}
	return nil
}

func parseConfigFile(filePath string) *Config {
	config, err := parseYAMLFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse YAML file %q: %s\n", filePath, err)
		os.Exit(1)
	}

	err = validateConfig(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error during configuration validation: %s\n", err)
		os.Exit(1)
	}

	return config
}

func loadCatalog(config *Config) *catalog.Catalog {
	var cat *catalog.Catalog
	var err error
	if config.Catalog != "" {
		cat, err = catalog.Load(config.Catalog)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while loading the module catalog: %s\n", err)
		os.Exit(1)
	}
	return cat
}

var backends = map[string]func() environment.Environment{
	"command": command.New,
	"redfish": redfish.New,
	"wol":     wakeonlan.New,
}

func newEnvironment(config *Config, backendName string) (environment.Environment, error) {
	newBackend, ok := backends[backendName]
	if !ok {
		backendNames := make([]string, 0, len(backends))
		for name := range backends {
			backendNames = append(backendNames, name)
		}
		sort.Strings(backendNames)
		return nil, fmt.Errorf("can't find the %q backend among the internal backends (available backends: %s)", backendName, strings.Join(backendNames, ", "))
	}

	env := newBackend()
	err := env.Init(config.Environment)
	if err != nil {
		return nil, fmt.Errorf("error during backend initialization: %w", err)
	}
	return env, nil
}

func createEnvironment(config *Config, backendName string) environment.Environment {
	env, err := newEnvironment(config, backendName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	return env
}

func run(cmd *cobra.Command, args []string) {
	config := parseConfigFile(configFilePath)
	cat := loadCatalog(config)
	env := createEnvironment(config, backendName)

	server := NewServer(config, cat, env, environment.NewSystemdChecker())
	err := server.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(upCmd, downCmd, stateCmd, modulesCmd)
}

var (
	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Start the environment",
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			env := createEnvironment(config, backendName)

			result, err := env.Start(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Environment power-up error: %s\n", err)
				os.Exit(1)
			}
			if !result.Succeeded() {
				fmt.Fprintf(os.Stderr, "Environment power-up error: %s\n", result.Output)
				os.Exit(1)
			}
		},
	}
	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Switch the environment off",
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			env := createEnvironment(config, backendName)

			control := shutdown.NewControl(env, newLogger("shutdown"), nil)
			result := control.Request(cmd.Context())
			if !result.Succeeded() {
				os.Exit(1)
			}
		},
	}
	stateCmd = &cobra.Command{
		Use:   "state",
		Short: "Fetch the environment state",
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			env := createEnvironment(config, backendName)

			state := env.State()

			if state.Running.Err != nil {
				fmt.Fprintf(os.Stderr, "Failed to retrieve RUNNING state: %s\n", state.Running.Err)
			}
			if state.Reachable.Err != nil {
				fmt.Fprintf(os.Stderr, "Failed to retrieve REACHABLE state: %s\n", state.Reachable.Err)
			}

			jsonString, err := json.Marshal(struct {
				Running   bool `json:"running"`
				Reachable bool `json:"reachable"`
			}{
				Running:   state.Running.Value,
				Reachable: state.Reachable.Value,
			})
			if err != nil {
				fmt.Println("Error during JSON conversion:", err)
				os.Exit(1)
			}

			fmt.Println(string(jsonString))
		},
	}
	modulesCmd = &cobra.Command{
		Use:   "modules",
		Short: "List the modules described by the catalog",
		Run: func(cmd *cobra.Command, args []string) {
			config := &Config{Catalog: catalogFilePath}
			cat := loadCatalog(config)

			for _, module := range cat.All() {
				fmt.Printf("%-14s %s\n", module.ID, module.Heading())
				for _, access := range module.Access {
					fmt.Printf("%-14s   %s: %s\n", "", access.Label, access.URL)
				}
			}
		},
	}
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
