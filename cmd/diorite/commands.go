package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	diorite "github.com/toutaio/toutago-diorite-injector"
	"github.com/toutaio/toutago-diorite-injector/config"
	"github.com/toutaio/toutago-diorite-injector/internal/demo"
)

type rootOptions struct {
	configPath string
	strict     bool
	logLevel   string
}

// newRootCommand creates the root command
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "diorite",
		Short: "Inspect and exercise the diorite injection container",
		Long: `diorite runs the bundled demo objects through the injection container
and prints the observed hook sequence and class descriptors.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a diorite.yaml config file")
	flags.BoolVar(&opts.strict, "strict", false, "reject duplicate bindings")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newDemoCommand(opts))
	rootCmd.AddCommand(newDescribeCommand(opts))

	return rootCmd
}

// container builds a container from the config file, the environment and
// the flags, in increasing precedence.
func (o *rootOptions) container(cmd *cobra.Command) (*diorite.Container, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = o.strict
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	options, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return diorite.New(options...), nil
}

// newDemoCommand creates the demo command
func newDemoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Initialize the demo objects and print the hook sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Logger().Sync() }()

			report, err := demo.Run(c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ExampleObject:       %s\n", strings.Join(report.Example, ", "))
			fmt.Fprintf(out, "  values:            %s\n", report.ExampleValues)
			fmt.Fprintf(out, "MethodExampleObject: %s\n", strings.Join(report.Method, ", "))
			fmt.Fprintf(out, "  provider:          %s\n", report.SomeModule)
			return nil
		},
	}
}

// newDescribeCommand creates the describe command
func newDescribeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the injection descriptors of the demo objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}

			classes, err := demo.Classes(c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, class := range classes {
				fmt.Fprintf(out, "%v\n", class.Type)
				for _, p := range class.Points {
					fmt.Fprintf(out, "  %-8s %-20s %v%s\n", p.Kind, p.Name, p.Key(), pointFlags(p))
				}
				for _, m := range class.Methods {
					fmt.Fprintf(out, "  %-8s %-20s hook=%s\n", m.Kind, m.Name, m.HookTarget())
					for _, param := range m.Params {
						fmt.Fprintf(out, "    %-6s %-18s %v%s\n", param.Kind, param.Name, param.Key(), pointFlags(param))
					}
				}
				for _, h := range class.Hooks {
					target := h.Target
					if h.Global() {
						target = "*"
					}
					fmt.Fprintf(out, "  hook     %-6s %-13s %s\n", h.Phase, target, h.Method)
				}
			}
			return nil
		},
	}
}

func pointFlags(p *diorite.InjectionPoint) string {
	var flags []string
	if p.Singleton {
		flags = append(flags, "singleton")
	}
	if p.Final {
		flags = append(flags, "final")
	}
	if p.Lazy {
		flags = append(flags, "lazy")
	}
	if p.Optional {
		flags = append(flags, "optional")
	}
	if len(flags) == 0 {
		return ""
	}
	return " {" + strings.Join(flags, ",") + "}"
}
