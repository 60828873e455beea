// Package config holds the run configuration of mobileqa: the page catalog,
// the emulated device, timeouts and output locations.
//
// Values are layered. NewConfig provides defaults, a YAML file found by
// FindConfigFile is applied on top with File.Apply, and command line flags
// override both. Validate is called once before the browser starts.
package config
