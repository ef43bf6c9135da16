package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"gopkg.ieclang.org/compiler.go/internal/compiler"
	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

type opts struct {
	DumpTokens bool
	DumpTree   bool
	External   bool
	Verbosity  int
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("ieclangc", pflag.PanicOnError)
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream as it is processed")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output a parse tree summary after parsing")
	flags.BoolVar(&op.External, "external", false, "Treat the given files as external declarations")
	flags.CountVarP(&op.Verbosity, "verbose", "v", "Increase log verbosity")
	_ = flags.Parse(os.Args[1:])
	targets := flags.Args()

	commonlog.Configure(op.Verbosity, nil)

	linkage := plc.LinkageInternal
	if op.External {
		linkage = plc.LinkageExternal
	}
	reporter := exc.NewReporter()
	c, err := compiler.New(
		compiler.OptionWithExcReporter(reporter),
		compiler.OptionWithLinkage(linkage),
	)
	if err != nil {
		panic(err)
	}

	_, err = c.Compile(ctx, &plc.CompileRequest{
		Files:      targets,
		Linkage:    linkage,
		DumpTokens: op.DumpTokens,
		DumpTree:   op.DumpTree,
	})

	renderer := exc.NewRenderer(os.Stderr)
	errored := renderer.RenderAll(reporter.Reported())
	if err != nil {
		var multi compiler.MultiException
		if !errors.As(err, &multi) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
	if errored > 0 {
		os.Exit(1)
	}
}
