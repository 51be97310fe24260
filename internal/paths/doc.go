// Provides platform-appropriate paths for the daemon.
//
// Paths follow XDG conventions on Linux and platform-native conventions on
// macOS and Windows, with the daemon name as the subdirectory under each
// base path. The runtime directory holds the PID file; the configuration
// directory holds an optional JSON file with flag defaults.
package paths
