package opts

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string // job config path, set by the root --config flag
}
