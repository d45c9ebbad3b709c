// Command shopadmin is the CustomTees operator CLI: catalog and design
// review commands, order bill export and an interactive console.
package main

import "github.com/MikeMC777/customtees/cmd/shopadmin/commands"

func main() {
	commands.Execute()
}
