package main

import "github.com/gatehound/gatehound/cmd/gatehound"

func main() { gatehound.Execute() }
