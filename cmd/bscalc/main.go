package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/jwaldner/breakingbad/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	err := newRootCmd().Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
