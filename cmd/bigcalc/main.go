package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"github.com/zephyrtronium/bigcalc"
)

var log = commonlog.GetLogger("bigcalc")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the settings for one run after merging config and flags.
type options struct {
	Config
	inname  string
	outname string
}

// run runs bigcalc with the given arguments and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, exprs, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	commonlog.Configure(opts.Verbosity, nil)
	log.Debugf("precision %d bits, format %q, max depth %d", opts.Precision, opts.Format, opts.MaxDepth)

	ctx := bigcalc.NewContext(bigcalc.Prec(opts.Precision))
	popts := []bigcalc.ParseOption{ctx, bigcalc.MaxDepth(opts.MaxDepth)}

	srcs, err := inputs(opts, exprs, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if srcs == nil {
		// Interactive session on a terminal.
		return repl(ctx, popts, opts, stdout, stderr)
	}

	out := stdout
	var f *os.File
	if opts.outname != "" && opts.outname != "-" {
		f, err = os.Create(opts.outname)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	status := 0
	for _, src := range srcs {
		if !evalOne(w, stderr, ctx, popts, opts, src) {
			status = 1
			if !opts.Lines {
				break
			}
		}
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if f != nil {
		if err := f.Close(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return status
}

func parseArgs(args []string, stderr io.Writer) (options, []string, error) {
	fs := flag.NewFlagSet("bigcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: bigcalc [flags] [expression ...]")
		fs.PrintDefaults()
	}
	var (
		flags   options
		cfgname string
		verbose count
	)
	def := defaultConfig()
	fs.StringVar(&flags.inname, "in", "", "input file (default stdin if no args given)")
	fs.StringVar(&flags.inname, "i", "", "shorthand for -in")
	fs.StringVar(&flags.outname, "out", "", "output file (default stdout)")
	fs.StringVar(&flags.outname, "o", "", "shorthand for -out")
	fs.StringVar(&flags.Format, "fmt", def.Format, "result formatting string")
	fs.UintVar(&flags.Precision, "p", def.Precision, "precision of calculations in bits")
	fs.IntVar(&flags.MaxDepth, "depth", def.MaxDepth, "maximum expression nesting")
	fs.BoolVar(&flags.Lines, "n", false, "parse separate input lines as separate expressions")
	fs.BoolVar(&flags.Echo, "echo", false, "print parse trees")
	fs.StringVar(&cfgname, "config", "", "config file (default "+defaultConfigPath()+")")
	fs.Var(&verbose, "v", "increase log verbosity (any number of times)")
	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}

	must := cfgname != ""
	if !must {
		cfgname = defaultConfigPath()
	}
	cfg, err := loadConfig(cfgname, must)
	if err != nil {
		return options{}, nil, err
	}
	opts := options{Config: cfg, inname: flags.inname, outname: flags.outname}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fmt":
			opts.Format = flags.Format
		case "p":
			opts.Precision = flags.Precision
		case "depth":
			opts.MaxDepth = flags.MaxDepth
		case "n":
			opts.Lines = flags.Lines
		case "echo":
			opts.Echo = flags.Echo
		}
	})
	opts.Verbosity += int(verbose)
	if err := opts.validate(); err != nil {
		return options{}, nil, err
	}
	return opts, fs.Args(), nil
}

// count is a flag counting the number of times it is given.
type count int

func (c *count) String() string {
	return strconv.Itoa(int(*c))
}

func (c *count) Set(string) error {
	*c++
	return nil
}

func (c *count) IsBoolFlag() bool {
	return true
}

// inputs collects the expressions to evaluate. An input file replaces any
// positional arguments. The result is nil if the expressions should come from
// an interactive session instead.
func inputs(opts options, args []string, stdin io.Reader) ([]string, error) {
	var srcs []string
	add := func(s string) {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		if !opts.Lines {
			srcs = append(srcs, s)
			return
		}
		for _, line := range strings.Split(s, "\n") {
			if strings.TrimSpace(line) != "" {
				srcs = append(srcs, line)
			}
		}
	}
	if opts.inname != "" && len(args) != 0 {
		log.Warningf("ignoring %d arguments in favor of %s", len(args), opts.inname)
	}
	switch {
	case opts.inname != "" && opts.inname != "-":
		log.Infof("reading expression from %s", opts.inname)
		b, err := os.ReadFile(opts.inname)
		if err != nil {
			return nil, fmt.Errorf("couldn't read input: %w", err)
		}
		add(string(b))
	case opts.inname == "-", len(args) == 0:
		if opts.inname == "" && isTerminal(stdin) {
			return nil, nil
		}
		log.Infof("reading expression from stdin")
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("couldn't read stdin: %w", err)
		}
		add(string(b))
	default:
		add(strings.Join(args, ""))
	}
	if srcs == nil {
		srcs = []string{}
	}
	return srcs, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// evalOne parses and evaluates one expression, writing the result to w or a
// diagnostic to stderr. The result is false if the expression failed.
func evalOne(w, stderr io.Writer, ctx *bigcalc.Context, popts []bigcalc.ParseOption, opts options, src string) bool {
	a, err := bigcalc.Parse(src, popts...)
	if err != nil {
		fmt.Fprintln(stderr, "parse error:", err)
		return false
	}
	log.Debugf("parsed %q as %v", src, a)
	if opts.Echo {
		fmt.Fprintf(w, "%v : ", a)
	}
	r, err := ctx.Eval(a)
	if err != nil {
		if opts.Echo {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(stderr, "evaluation error:", err)
		return false
	}
	fmt.Fprintf(w, opts.Format+"\n", r)
	return true
}
