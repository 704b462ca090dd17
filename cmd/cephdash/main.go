package main

import (
	"github.com/rileyhilliard/cephdash/internal/cli"
)

// Stamped by the release build:
//
//	go build -ldflags "-X main.version=0.3.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%FT%TZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetBuild(version, commit, date)
	cli.Execute()
}
