package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/bigcalc"
)

const (
	promptMain = "> "
	promptCont = ". "
)

// repl runs an interactive session, evaluating each expression as it is
// entered. The result is the exit status.
func repl(ctx *bigcalc.Context, popts []bigcalc.ParseOption, opts options, stdout, stderr io.Writer) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	hist := opts.historyPath()
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			if _, err := ln.ReadHistory(f); err != nil {
				log.Warningf("reading history: %v", err)
			}
			f.Close()
		}
		defer func() {
			f, err := os.Create(hist)
			if err != nil {
				log.Warningf("saving history: %v", err)
				return
			}
			if _, err := ln.WriteHistory(f); err != nil {
				log.Warningf("saving history: %v", err)
			}
			f.Close()
		}()
	}

	w := bufio.NewWriter(stdout)
	for {
		src, ok := readExpr(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit", ":q":
			return 0
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		evalOne(w, stderr, ctx, popts, opts, src)
		if err := w.Flush(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
}

// readExpr reads lines until they form an expression which is not merely
// unfinished. The second result is false at the end of input.
func readExpr(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() != 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			// ^C discards the pending input.
			b.Reset()
			continue
		case err != nil:
			return "", false
		}
		if b.Len() != 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src fails to parse only because it ends too
// soon, e.g. with an open bracket or a dangling operator.
func incomplete(src string) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}
	_, err := bigcalc.Parse(src)
	var be *bigcalc.BracketError
	if errors.As(err, &be) {
		return be.Left != "" && be.Right == ""
	}
	var ee *bigcalc.EmptyExpressionError
	if errors.As(err, &ee) {
		return ee.End == "" && ee.At.Start == len(src)
	}
	var te *bigcalc.TokenError
	if errors.As(err, &te) {
		return te.Text == ""
	}
	return false
}
