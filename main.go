package main

import (
	"github.com/sidkik/emoji-mirror/cmd"
	"github.com/sidkik/emoji-mirror/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
