package main

import "github.com/typeloader/typeloader/cmd/typeloader"

func main() { typeloader.Execute() }
