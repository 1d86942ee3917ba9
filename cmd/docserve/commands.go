package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/docserve/internal/app"
	"github.com/bastiangx/docserve/internal/cli"
	"github.com/bastiangx/docserve/internal/logger"
	"github.com/bastiangx/docserve/internal/utils"
	"github.com/bastiangx/docserve/pkg/backend/mdn"
	"github.com/bastiangx/docserve/pkg/config"
	"github.com/bastiangx/docserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags and what they load.
type rootOptions struct {
	configPath string
	envFile    string
	debug      bool

	cfg        *config.Config
	activePath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Autocomplete service for documentation lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "version", "snapshot":
				return nil
			}
			return opts.load()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to docserve.toml (default: user config dir)")
	root.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "Path to a .env file with credentials")
	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug mode")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newIPCCmd(opts))
	root.AddCommand(newQueryCmd(opts))
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func (o *rootOptions) load() error {
	logger.Configure("", o.debug)
	cfg, path, err := config.LoadConfigWithPriority(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.LoadEnv(o.envFile); err != nil {
		return err
	}
	logger.Configure(cfg.Log.Level, o.debug)
	log.Debug("Config loaded", "path", config.GetActiveConfigPath(path))
	o.cfg = cfg
	o.activePath = path
	return nil
}

// build wires the container, resolving data files next to the binary or config dir.
func (o *rootOptions) build() (*app.Container, error) {
	var resolve func(string) string
	if pr, err := utils.NewPathResolver(); err != nil {
		log.Warnf("Failed to initialize path resolver: %v. Using data paths as given.", err)
	} else {
		resolve = pr.ResolveDataFile
	}
	return app.Build(o.cfg, resolve)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr    string
		preload bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactions over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				opts.cfg.Server.Addr = addr
			}
			c, err := opts.build()
			if err != nil {
				return err
			}
			if preload {
				if err := c.Docs.Preload(cmd.Context()); err != nil {
					log.Warnf("Docs preload incomplete: %v", err)
				}
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for range hup {
					log.Info("Reloading data files")
					c.Reload()
				}
			}()

			s, err := server.NewHTTPServer(c.Dispatcher, opts.cfg.Server.PublicKey, opts.cfg.RequestTimeout())
			if err != nil {
				return err
			}
			return s.ListenAndServe(cmd.Context(), opts.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&preload, "preload", false, "Load every docs source before serving")
	return cmd
}

func newIPCCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ipc",
		Short: "Serve msgpack requests over stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.build()
			if err != nil {
				return err
			}
			return server.NewServer(c.Dispatcher, os.Stdin, os.Stdout, opts.cfg.RequestTimeout()).Start(cmd.Context())
		},
	}
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query [command] [option=value ...] [query]",
		Short: "Run autocomplete queries locally, interactively without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.build()
			if err != nil {
				return err
			}
			h := cli.NewInputHandler(c.Dispatcher, cmd.OutOrStdout(), opts.cfg.RequestTimeout())
			if len(args) == 0 {
				return h.Start(cmd.Context(), cmd.InOrStdin())
			}
			h.HandleLine(cmd.Context(), strings.Join(args, " "))
			return nil
		},
	}
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <index.json> <index.msgpack>",
		Short: "Convert a JSON MDN index into a msgpack snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := mdn.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := mdn.SaveMsgpack(args[1], entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(entries), args[1])
			return nil
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var rebuild bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the active config path, or rebuild the default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rebuild {
				if err := config.RebuildConfigFile(); err != nil {
					return err
				}
			}
			if err := opts.cfg.Validate(); err != nil {
				log.Warn("Config is not usable", "err", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, config.GetActiveConfigPath(opts.activePath))
			if pr, err := utils.NewPathResolver(); err == nil {
				fmt.Fprintf(out, "data files are also looked up in %s\n", pr.DataDir())
				for k, v := range pr.RuntimeInfo() {
					log.Debug("runtime", k, v)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Overwrite the default config file with defaults")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current version",
		Run: func(cmd *cobra.Command, _ []string) {
			printBanner()
		},
	}
}

func printBanner() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ DocServe ] Autocomplete for documentation lookups")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}
