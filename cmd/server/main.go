// cmd/server/main.go
package main

import "safari-connect/internal/cli"

func main() {
	cli.Execute()
}
