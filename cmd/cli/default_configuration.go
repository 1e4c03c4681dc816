package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in configuration and its format.
// Every configuration key has an entry here so environment overrides resolve for all of them.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfigurationContent...), configurationTypeConstant
}
