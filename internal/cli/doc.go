// Parses flags and configures logging for the echod daemon.
//
// The daemon accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-a, --address   TCP address to listen on or connect to.
//
// Subcommands:
//
//	start           Run the server until SIGINT or SIGTERM.
//	echo TEXT       Send an echo request and print the reply.
//	add A B         Send an add request and print the sum.
//	version         Print version information.
//
// Flag defaults may be overridden by a JSON file at [paths.ConfigFile],
// keyed by flag name (for example {"max-clients": 50}). Flags override
// build-time defaults set via linker flags. After parsing, the global logger
// is reconfigured to reflect the final level and verbosity before the
// selected command runs.
package cli
