package main

import (
	"github.com/rezkam/ledger/tools/linters/frequencyswitch"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(frequencyswitch.Analyzer)
}
