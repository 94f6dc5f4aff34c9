package cmds

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joshlembergtrimble/genai-training-track/cmd/devstack/cmds/helphelpers"
	"github.com/joshlembergtrimble/genai-training-track/pkg/config"
	"github.com/joshlembergtrimble/genai-training-track/pkg/launcher"
	"github.com/joshlembergtrimble/genai-training-track/pkg/logflags"
	"github.com/joshlembergtrimble/genai-training-track/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// workingDir is the working directory for both children.
	workingDir string
	// envFile overrides the environment file named in the configuration.
	envFile string
	// grace overrides the grace period named in the configuration.
	grace time.Duration
	// redirects specifies redirect rules for the children's standard streams.
	redirects []string
	// versionVerbose is whether to print the build information with the version.
	versionVerbose bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const devstackCommandLongDesc = `Devstack starts the development stack of the GenAI training track: the HTTP
API server and the web UI, each as a child process, and keeps running until
both of them have exited.

On startup devstack prints the process id of every child. An interrupt
(Ctrl-C) or a termination request received by devstack is propagated to the
children, which are given a grace period to shut down before being killed.

The commands used to start the children, the environment file passed to them
and the grace period are read from $HOME/.devstack/config.yml. The file is
created with commented defaults the first time devstack runs.`

// New returns an initialized command tree.
func New() *cobra.Command {
	// Config setup and load.
	conf = config.LoadConfig()

	// Main devstack root command.
	rootCommand = &cobra.Command{
		Use:   "devstack",
		Short: "Devstack runs the GenAI training track development stack.",
		Long:  devstackCommandLongDesc,
		Args:  cobra.NoArgs,
		Run:   stackCmd,
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable launcher logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (see 'devstack help log')`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor (see 'devstack help log').")

	rootCommand.PersistentFlags().StringVar(&workingDir, "wd", ".", "Working directory for the children.")
	rootCommand.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file passed to the children, instead of the configured one.")
	rootCommand.PersistentFlags().DurationVar(&grace, "grace", 0, "Grace period between asking a child to terminate and killing it, instead of the configured one.")
	rootCommand.PersistentFlags().StringArrayVarP(&redirects, "redirect", "r", []string{}, "Specifies redirect rules for the children's standard streams (see 'devstack help redirect')")

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Devstack Launcher\n%s\n", version.DevstackVersion)
			if versionVerbose {
				fmt.Println(version.BuildInfo())
			}
		},
	}
	versionCommand.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "print verbose version info")
	rootCommand.AddCommand(versionCommand)

	// 'env' subcommand.
	envCommand := &cobra.Command{
		Use:   "env",
		Short: "Prints the environment overrides passed to the children.",
		Long: `Prints the environment overrides the children would be started with, one
KEY=VALUE pair per line, as read from the environment file (see --env-file
and the env-file configuration entry).`,
		Args: cobra.NoArgs,
		Run:  envCmd,
	}
	rootCommand.AddCommand(envCommand)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Help about logging flags.",
		Long: `Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:


	launcher	Log session lifecycle: spawning, stopping, exit statuses
	proc		Log child process management details

Additionally --log-dest can be used to specify where the logs should be
written.
If the argument is a number it will be interpreted as a file descriptor,
otherwise as a file path.

`,
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "redirect",
		Short: "Help about file redirection.",
		Long: `The standard streams of the children can be redirected to files using the
-r flag, or connected to a terminal using the api-tty and ui-tty
configuration entries.

The syntax for the -r argument is:

	-r child:[source:]path

where child is one of 'api' and 'ui' and source is one of 'stdin', 'stdout'
and 'stderr'. If source is omitted stdin is redirected. For example:

	devstack -r api:stdout:api.log -r ui:stdout:ui.log

A child whose configuration names a tty can not also have redirects.

`,
	})

	helpFunc := rootCommand.HelpFunc()
	rootCommand.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helphelpers.Prepare(cmd)
		helpFunc(cmd, args)
	})

	usageFunc := rootCommand.UsageFunc()
	rootCommand.SetUsageFunc(func(cmd *cobra.Command) error {
		helphelpers.Prepare(cmd)
		return usageFunc(cmd)
	})

	rootCommand.DisableAutoGenTag = true

	return rootCommand
}

func stackCmd(cmd *cobra.Command, args []string) {
	status := func() int {
		if err := logflags.Setup(log, logOutput, logDest); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		defer logflags.Close()
		return launchStack()
	}()
	os.Exit(status)
}

func launchStack() int {
	specs, err := buildSpecs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	gracePeriod := conf.Grace()
	if grace > 0 {
		gracePeriod = grace
	}

	// The signal handler has to be installed before the children exist so an
	// early Ctrl-C can not kill the launcher and orphan them.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(ch)

	l := launcher.New(&launcher.Config{GracePeriod: gracePeriod}, specs)
	if err := l.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	for _, c := range l.Children() {
		fmt.Printf("%s: pid %d\n", c.Name, c.Pid())
	}

	go func() {
		<-ch
		l.Stop()
	}()

	// A child exiting with a non-zero status is reported but does not change
	// the launcher's own exit status: the session still wound down in order.
	if err := l.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	return 0
}

func buildSpecs() ([]launcher.Spec, error) {
	apiArgs, err := config.ParseCommand(conf.APICommand)
	if err != nil {
		return nil, fmt.Errorf("invalid api-command: %v", err)
	}
	uiArgs, err := config.ParseCommand(conf.UICommand)
	if err != nil {
		return nil, fmt.Errorf("invalid ui-command: %v", err)
	}
	env, err := loadEnvFile()
	if err != nil {
		return nil, err
	}
	rd, err := parseRedirects(redirects)
	if err != nil {
		return nil, err
	}
	return []launcher.Spec{
		{Name: "api", Args: apiArgs, Dir: workingDir, Env: env, Redirects: rd["api"], TTY: conf.APITTY},
		{Name: "ui", Args: uiArgs, Dir: workingDir, Env: env, Redirects: rd["ui"], TTY: conf.UITTY},
	}, nil
}

func envCmd(cmd *cobra.Command, args []string) {
	status := func() int {
		env, err := loadEnvFile()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		for _, kv := range env {
			fmt.Println(kv)
		}
		return 0
	}()
	os.Exit(status)
}

// loadEnvFile reads the environment overrides for the children. A missing
// default file is skipped; a file explicitly requested with --env-file has
// to exist.
func loadEnvFile() ([]string, error) {
	name := conf.EnvFile
	explicit := false
	if envFile != "" {
		name = envFile
		explicit = true
	}
	if name == "" {
		return nil, nil
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(workingDir, path)
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read environment file %s: %v", path, err)
	}
	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env, nil
}

// childNames are the valid redirect targets, in start order.
var childNames = []string{"api", "ui"}

// parseRedirects turns the --redirect arguments into per-child stdin,
// stdout and stderr paths.
func parseRedirects(redirects []string) (map[string][3]string, error) {
	r := map[string][3]string{}
	names := [3]string{"stdin", "stdout", "stderr"}
	for _, redirect := range redirects {
		child := ""
		for _, name := range childNames {
			pfx := name + ":"
			if strings.HasPrefix(redirect, pfx) {
				child = name
				redirect = redirect[len(pfx):]
				break
			}
		}
		if child == "" {
			return nil, fmt.Errorf("redirect error: %q does not name a child (api or ui)", redirect)
		}
		idx := 0
		for i, name := range names {
			pfx := name + ":"
			if strings.HasPrefix(redirect, pfx) {
				idx = i
				redirect = redirect[len(pfx):]
				break
			}
		}
		if redirect == "" {
			return nil, fmt.Errorf("redirect error: empty %s path for %s", names[idx], child)
		}
		cur := r[child]
		if cur[idx] != "" {
			return nil, fmt.Errorf("redirect error: %s of %s redirected twice", names[idx], child)
		}
		cur[idx] = redirect
		r[child] = cur
	}
	return r, nil
}
