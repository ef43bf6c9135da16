package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"gopkg.ieclang.org/compiler.go/internal/compiler/st"
	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/iter"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

// Compiler drives lexing and parsing of a set of structured text files into
// compilation units. Files are independent and parsed in parallel.
type Compiler interface {
	Compile(ctx context.Context, req *plc.CompileRequest) (*plc.CompileResponse, error)
}

type Option func(c *compiler) error

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithMaxConcurrency(n int) Option {
	return func(c *compiler) error {
		c.MaxConcurrency = n
		return nil
	}
}

func OptionWithLinkage(linkage plc.LinkageType) Option {
	return func(c *compiler) error {
		c.Linkage = linkage
		return nil
	}
}

func OptionWithOutput(out io.Writer) Option {
	return func(c *compiler) error {
		c.Output = out
		return nil
	}
}

func New(opts ...Option) (Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter()
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	c.ids = plc.NewIdProvider()
	c.log = commonlog.GetLogger("compiler")
	return c, nil
}

type compiler struct {
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
	Linkage        plc.LinkageType
	Output         io.Writer
	ids            plc.IdProvider
	log            commonlog.Logger
}

func (self *compiler) Compile(ctx context.Context, req *plc.CompileRequest) (*plc.CompileResponse, error) {
	loaded := &sync.Map{}
	results := make(chan fileResult)
	for _, file := range req.Files {
		go func(file string) {
			unit, err := self.compileFile(ctx, file, loaded, req.DumpTokens, req.DumpTree)
			results <- fileResult{unit: unit, err: err}
		}(file)
	}

	units := make([]*plc.CompilationUnit, 0, len(req.Files))
	for x := 0; x < len(req.Files); x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.err != nil {
				return nil, result.err
			}
			if result.unit != nil {
				units = append(units, result.unit)
			}
		}
	}

	response := &plc.CompileResponse{Units: units}
	if self.Reporter.MaxSeverity() == exc.SeverityError {
		return response, MultiException(self.Reporter.Reported())
	}
	return response, nil
}

func (self *compiler) compileFile(ctx context.Context, path string, loaded *sync.Map, dumpTokens bool, dumpTree bool) (*plc.CompilationUnit, error) {
	self.Semaphore.Acquire()
	defer self.Semaphore.Release()
	if _, ok := loaded.LoadOrStore(path, true); ok {
		return nil, nil
	}

	self.log.Debugf("parsing %s", path)
	source, err := os.ReadFile(path)
	if err != nil {
		_ = self.Reporter.Report(exc.WrapUnknown(exc.Location{URI: path}, err))
		return nil, nil
	}

	lexer := st.NewLexerST(self.Reporter)
	tokens, err := lexer.Lex(ctx, path, string(source))
	if err != nil {
		return nil, err
	}
	if dumpTokens {
		tokens = self.dumpTokens(ctx, tokens)
	}

	parser := st.NewParserST(self.Reporter, self.ids, self.Linkage)
	unit, err := parser.Parse(ctx, path, tokens)
	if err != nil {
		return nil, err
	}
	if dumpTree {
		self.dumpUnit(unit)
	}
	return unit, nil
}

// dumpTokens drains the stream while printing it, then hands the parser an
// equivalent replay.
func (self *compiler) dumpTokens(ctx context.Context, tokens plc.Iterator[*plc.Token]) plc.Iterator[*plc.Token] {
	var replay []*plc.Token
	for tok := tokens.Next(ctx); tok.IsPresent(); tok = tokens.Next(ctx) {
		fmt.Fprintf(self.Output, "%-24s", tok.Value().Type)
		fmt.Fprintf(self.Output, "%q\n", tok.Value().Value)
		replay = append(replay, tok.Value())
	}
	return iter.NewSlice(replay)
}

func (self *compiler) dumpUnit(unit *plc.CompilationUnit) {
	fmt.Fprintf(self.Output, "unit %s\n", unit.FileName)
	for _, userType := range unit.UserTypes {
		fmt.Fprintf(self.Output, "  type %s\n", dataTypeName(userType.DataType))
	}
	for _, block := range unit.GlobalVars {
		fmt.Fprintf(self.Output, "  var_global (%d variables)\n", len(block.Variables))
	}
	for _, iface := range unit.Interfaces {
		fmt.Fprintf(self.Output, "  interface %s (%d methods)\n", iface.Ident.Name, len(iface.Methods))
	}
	for _, pou := range unit.Pous {
		fmt.Fprintf(self.Output, "  %s %s\n", strings.ToLower(pou.Kind.String()), pou.Name)
	}
	for _, impl := range unit.Implementations {
		nodes := 0
		for _, statement := range impl.Statements {
			plc.WalkNode(statement, func(plc.Node) { nodes = nodes + 1 })
		}
		fmt.Fprintf(self.Output, "  implementation %s (%d statements, %d nodes)\n",
			impl.Name, len(impl.Statements), nodes)
	}
}

func dataTypeName(dataType plc.DataType) string {
	switch t := dataType.(type) {
	case *plc.StructType:
		return t.Name
	case *plc.ArrayType:
		return t.Name
	case *plc.EnumType:
		return t.Name
	case *plc.PointerType:
		return t.Name
	case *plc.StringType:
		return t.Name
	case *plc.SubRangeType:
		return t.Name
	default:
		return ""
	}
}

type fileResult struct {
	unit *plc.CompilationUnit
	err  error
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
