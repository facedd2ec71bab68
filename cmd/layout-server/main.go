// layout-server serves force-directed graph layouts over http. It is
// configured by environment variables, see app.Config and db.Config.
package main

import "github.com/suxatcode/learn-graph-layout/internal/app"

func main() {
	app.Run()
}
