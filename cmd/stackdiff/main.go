// Where: cmd/stackdiff/main.go
// What: CLI entrypoint.
// Why: Execute the preview with configured dependencies.
package main

import (
	"os"

	"github.com/stackdiff/stackdiff/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], buildDependencies()))
}
