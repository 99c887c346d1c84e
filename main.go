package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/juju/errors"

	"github.com/pipeking636/CS525/logger"
	"github.com/pipeking636/CS525/server/conf"
)

const version = "0.2.0"

// cli is the command tree of cs525.
type cli struct {
	Config   string `name:"config" short:"c" help:"Path to the ini configuration file." type:"path"`
	DataDir  string `name:"data-dir" short:"d" help:"Directory holding table files (overrides the config)."`
	LogLevel string `name:"log-level" help:"Log level (overrides the config)."`

	Create  CreateCmd  `cmd:"" help:"Create a table from attribute definitions name:type[:length]."`
	Info    InfoCmd    `cmd:"" help:"Show the metadata of a table."`
	Insert  InsertCmd  `cmd:"" help:"Insert one record."`
	Get     GetCmd     `cmd:"" help:"Print the record at page:slot."`
	Update  UpdateCmd  `cmd:"" help:"Overwrite the record at page:slot."`
	Delete  DeleteCmd  `cmd:"" help:"Delete the record at page:slot."`
	Scan    ScanCmd    `cmd:"" help:"Print every record, optionally filtered by attr=value."`
	Dump    DumpCmd    `cmd:"" help:"Export a table as a snappy compressed text stream."`
	CatDump CatDumpCmd `cmd:"" name:"cat-dump" help:"Print the lines of a dump file."`
	Drop    DropCmd    `cmd:"" help:"Delete a table file."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// app carries what every command needs.
type app struct {
	cfg *conf.Cfg
	out io.Writer
}

func newApp(c *cli, out io.Writer) (*app, error) {
	cfg, err := conf.NewCfg().Load(&conf.CommandLineArgs{ConfigPath: c.Config})
	if err != nil {
		return nil, errors.Annotate(err, "load config")
	}
	cfg.ApplyEnv()
	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}

	if err := logger.InitLogger(cfg.LogConfig()); err != nil {
		return nil, errors.Annotate(err, "init logger")
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, errors.Trace(err)
	}
	logger.Debugf("data dir %s, pool %d frames %s", cfg.DataDir, cfg.PoolFrames, cfg.PoolStrategy)
	return &app{cfg: cfg, out: out}, nil
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("cs525"),
		kong.Description("Buffer pool backed record store."),
		kong.UsageOnError(),
	)

	a, err := newApp(&c, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.ErrorStack(err))
		os.Exit(1)
	}
	if err := ctx.Run(a); err != nil {
		logger.Debugf("%s", errors.ErrorStack(err))
		ctx.FatalIfErrorf(err)
	}
}
