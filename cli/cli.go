package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/cli/cmd"
	"github.com/ardnew/blockcfg/config"
	"github.com/ardnew/blockcfg/pkg"
)

// CLI is the top-level command-line interface for blockcfg.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Separator string            `default:":" help:"Separator joining block names and keys."                           short:"S"`
	Define    map[string]string `            help:"Define NAME=VALUE for $ENV{NAME}, overriding the environment." short:"D"`

	Dump    cmd.Dump    `cmd:"" default:"withargs" help:"Print the merged configuration of the given sources"`
	Get     cmd.Get     `cmd:""                    help:"Print the value of a single key"`
	Check   cmd.Check   `cmd:""                    help:"Report every defect of the given sources"`
	Watch   cmd.Watch   `cmd:""                    help:"Print the configuration each time a source changes"`
	Browse  cmd.Browse  `cmd:""                    help:"Browse keys interactively with fuzzy filtering"`
	Init    cmd.Init    `cmd:""                    help:"Initialize settings file"`
	Version cmd.Version `cmd:""                    help:"Print version information"`
}

// Run executes the blockcfg CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configPath(baseConfig),
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before anything else logs, including the
	// settings loader below.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(load(ctx), settingsFiles()...),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithParserOptions(ctx,
		config.WithSeparator(cli.Separator),
		config.WithEnv(cli.lookupEnv),
	)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// lookupEnv resolves $ENV{} references from --define before the process
// environment.
func (cli *CLI) lookupEnv(name string) (string, bool) {
	if v, ok := cli.Define[name]; ok {
		return v, true
	}

	return os.LookupEnv(name)
}
