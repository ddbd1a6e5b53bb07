package main

import "github.com/sebuszqo/FinanceLedger/cmd/ledgerctl/commands"

func main() {
	commands.Execute()
}
