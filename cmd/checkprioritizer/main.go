package main

// @title           checkprioritizer API
// @version         1.0
// @description     Retrieval relay for fact-checking. Returns ranked claim evidence and cited answers drafted from it.

// @contact.name   Custodia Labs
// @contact.url    https://github.com/custodia-labs/checkprioritizer/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"os"

	_ "github.com/custodia-labs/checkprioritizer/docs"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
