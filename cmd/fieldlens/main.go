// Command fieldlens analyzes Tableau workbooks into a field catalog with
// dependency graphs, lineage queries and a generated documentation site.
package main

import (
	"os"

	"github.com/fieldlens-labs/fieldlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
