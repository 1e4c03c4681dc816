// Package utils exposes the configuration loader and logger factory shared by
// the ghmcp commands.
package utils
