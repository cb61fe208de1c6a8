package main

import "github.com/dminnear-rh/vp-rag-llm-ui/cmd"

func main() {
	cmd.Execute()
}
