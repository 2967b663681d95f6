package main

import (
	"os"

	"github.com/NepomukLorenz/auditrevenue/auditrevenue/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
