//go:build !unix

package stir

import "os"

func signalOf(*os.ProcessState) string {
	return ""
}
