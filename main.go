package main

import "github.com/resdevops/maintenance-proxy/internal/cmd"

func main() {
	cmd.Execute()
}
