package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/riicchhaarrd/libgsc/lang/scanner"
	"github.com/riicchhaarrd/libgsc/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles scans each file independently and prints one line per
// token: its position, kind, and (for literal tokens) the decoded value.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := tokenizeFile(stdio, file, src); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func tokenizeFile(stdio mainer.Stdio, file string, src []byte) error {
	var scanErr error
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", pos, msg)
		if scanErr == nil {
			scanErr = fmt.Errorf("%s: %s", pos, msg)
		}
	})

	var val token.Value
	for {
		tok := s.Scan(&val)
		if tok == token.EOF {
			break
		}
		pos := token.Position{File: file, Pos: val.Pos}
		fmt.Fprintf(stdio.Stdout, "%s: %s", pos, tok)
		if lit := tokenLiteral(tok, val); lit != "" {
			fmt.Fprintf(stdio.Stdout, " %s", lit)
		}
		fmt.Fprintln(stdio.Stdout)
	}
	return scanErr
}

func tokenLiteral(tok token.Token, val token.Value) string {
	switch tok {
	case token.IDENT, token.STRING:
		return val.Raw
	case token.INT:
		return fmt.Sprintf("%d", val.Int)
	case token.FLOAT:
		return fmt.Sprintf("%g", val.Float)
	}
	return ""
}
