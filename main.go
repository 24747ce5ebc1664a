package main

import "SoundCircle/cmd"

func main() {
	cmd.Execute()
}
