package main

import "github.com/PizzaHomicide/rotv/internal/cli"

func main() {
	cli.Execute()
}
