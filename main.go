package main

import "github.com/timvw/prompt-grader/cmd"

func main() {
	cmd.Execute()
}
