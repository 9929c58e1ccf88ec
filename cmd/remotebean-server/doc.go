// Command remotebean-server hosts the demo components behind the naming
// and invocation services.
//
// Configuration comes from an optional YAML file, REMOTEBEAN_ environment
// variables and flags. Edits to the file's log.level and session timing
// apply without a restart.
package main
