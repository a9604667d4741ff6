package main

import "github.com/rmacedo/prestacao-viagens/cmd"

func main() {
	cmd.Execute()
}
