package main

import (
	"github.com/rezkam/ledger/tools/linters/moneyfloat"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(moneyfloat.Analyzer)
}
