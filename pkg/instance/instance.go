// Package instance identifies the running process in log output.
package instance

import "os"

// ID returns the deployment-assigned instance identifier, with a stable
// default for local runs.
func ID() string {
	if id := os.Getenv("MARKETCORE_INSTANCE_ID"); id != "" {
		return id
	}
	return "local-0"
}
