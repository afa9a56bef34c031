// File: cmd/chat/main.go
package main

import "github.com/iyunix/go-chatfront/internal/cli"

func main() {
	cli.Execute()
}
