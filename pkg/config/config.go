package config

import (
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/cosiner/argv"
	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".devstack"
	configFile string = "config.yml"
)

// Default command lines for the two children. Ports and interfaces belong to
// the commands themselves; devstack never rewrites them.
const (
	DefaultAPICommand = "uv run uvicorn my_api.my_agent_api:app --host 0.0.0.0 --port 8000 --reload"
	DefaultUICommand  = "uv run streamlit run my_ui/ui_main.py --server.address 0.0.0.0 --server.port 8501"
)

// DefaultGracePeriod is how long Stop waits between the termination request
// and the forced kill of a child's process group when grace-period is unset.
const DefaultGracePeriod = 10 * time.Second

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// APICommand is the command line used to start the API server child.
	APICommand string `yaml:"api-command"`
	// UICommand is the command line used to start the UI server child.
	UICommand string `yaml:"ui-command"`

	// EnvFile is the dotenv file whose variables are passed to both children,
	// resolved relative to the working directory. A missing file is ignored.
	EnvFile string `yaml:"env-file,omitempty"`

	// GracePeriod is the duration between asking a child to terminate and
	// killing its process group, in time.ParseDuration syntax.
	GracePeriod string `yaml:"grace-period,omitempty"`

	// APITTY and UITTY optionally name a terminal device the respective child
	// is attached to as its controlling terminal.
	APITTY string `yaml:"api-tty,omitempty"`
	UITTY  string `yaml:"ui-tty,omitempty"`
}

// Grace returns the configured grace period. Unset or unparsable values fall
// back to DefaultGracePeriod.
func (c *Config) Grace() time.Duration {
	if c.GracePeriod == "" {
		return DefaultGracePeriod
	}
	d, err := time.ParseDuration(c.GracePeriod)
	if err != nil || d <= 0 {
		fmt.Printf("Invalid grace-period %q, using %s.\n", c.GracePeriod, DefaultGracePeriod)
		return DefaultGracePeriod
	}
	return d
}

// ParseCommand splits a configured command line into argv form. The first
// element is the executable, the rest are its arguments; devstack does not
// interpret them further.
func ParseCommand(cmdline string) ([]string, error) {
	v, err := argv.Argv(cmdline,
		func(s string) (string, error) {
			return "", fmt.Errorf("backtick not supported in %q", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal command line %q", cmdline)
	}
	if len(v[0]) == 0 {
		return nil, fmt.Errorf("empty command line")
	}
	return v[0], nil
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() *Config {
	err := createConfigPath()
	if err != nil {
		fmt.Printf("Could not create config directory: %v.", err)
		return applyDefaults(&Config{})
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Printf("Unable to get config file path: %v.", err)
		return applyDefaults(&Config{})
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			fmt.Printf("Error creating default config file: %v", err)
			return applyDefaults(&Config{})
		}
	}
	defer func() {
		err := f.Close()
		if err != nil {
			fmt.Printf("Closing config file failed: %v.", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		fmt.Printf("Unable to read config data: %v.", err)
		return applyDefaults(&Config{})
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		fmt.Printf("Unable to decode config file: %v.", err)
		return applyDefaults(&Config{})
	}

	return applyDefaults(&c)
}

// SaveConfig will marshal and save the config struct
// to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	return err
}

func applyDefaults(c *Config) *Config {
	if c.APICommand == "" {
		c.APICommand = DefaultAPICommand
	}
	if c.UICommand == "" {
		c.UICommand = DefaultUICommand
	}
	if c.EnvFile == "" {
		c.EnvFile = ".env"
	}
	return c
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	return f, nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for the devstack launcher.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Command line used to start the API server child.
# api-command: "uv run uvicorn my_api.my_agent_api:app --host 0.0.0.0 --port 8000 --reload"

# Command line used to start the UI server child.
# ui-command: "uv run streamlit run my_ui/ui_main.py --server.address 0.0.0.0 --server.port 8501"

# Dotenv file whose variables are passed to both children, resolved relative
# to the working directory. A missing file is ignored.
# env-file: .env

# How long to wait after asking a child to terminate before its process group
# is killed.
# grace-period: 10s

# Terminal device the respective child is attached to as its controlling
# terminal. Leave unset to share this terminal's streams.
# api-tty: /dev/ttys001
# ui-tty: /dev/ttys002
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	userHomeDir := "."
	home, err := os.UserHomeDir()
	if err == nil {
		userHomeDir = home
	}
	return path.Join(userHomeDir, configDir, file), nil
}
