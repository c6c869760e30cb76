// Command qween is the control panel for the qween mirror daemon. It talks
// to qweend over the control socket and also hosts offline utilities for
// cameras, credentials and configuration.
package main
