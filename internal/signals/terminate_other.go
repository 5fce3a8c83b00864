//go:build !unix

package signals

import "os"

func terminate() {
	os.Exit(130)
}
