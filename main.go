package main

import "github.com/scttfrdmn/awsmp/cmd"

func main() {
	cmd.Execute()
}
