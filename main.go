package main

import (
	"embed"

	cmd "github.com/rnaget/compliance-report/cmd/rnaget-report"
	"github.com/rnaget/compliance-report/internal/assets"
)

//go:embed data/templates
var vfs embed.FS

func main() {
	assets.UpdateData(&vfs)
	cmd.Execute()
}
