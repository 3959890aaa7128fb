package main

import (
	"os"

	"github.com/shouni/gemini-promo-kit/pkg/cli"
)

// ExitCoder は終了コードを持つエラーです。
type ExitCoder interface {
	ExitCode() int
}

func main() {
	if err := cli.Execute(); err != nil {
		if ec, ok := err.(ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}
