package cmd

var version = "dev" // Set at build time using -ldflags

// Version returns the application version string.
func Version() string {
	return version
}
