package main

import (
	"github.com/Gagrio/suse-support-material/pkg/cli"
)

func main() {
	cli.Execute()
}
