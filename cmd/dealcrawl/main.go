package main

import (
	"context"
	"dealcrawl-backend/cmd/dealcrawl/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
