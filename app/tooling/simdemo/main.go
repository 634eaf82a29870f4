package main

import "github.com/MXmingxuan/blockchain-lab/app/tooling/simdemo/cmd"

func main() {
	cmd.Execute()
}
