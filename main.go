// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/googol/nupackager/cmd/nupackager"

func main() {
	cmd.Execute()
}
