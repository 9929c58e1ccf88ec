// Package confloader loads layered configuration with koanf.
//
// Sources are merged in increasing priority:
//
//  1. Defaults already present in the target struct
//  2. A YAML configuration file
//  3. Environment variables (REMOTEBEAN_ prefix by default)
//  4. Explicit overrides, usually command-line flags, via LoadMap
//
// Environment variable names map to keys by dropping the prefix,
// lowercasing, and turning the first underscore into a section separator:
// REMOTEBEAN_SESSION_IDLE_TIMEOUT becomes session.idle_timeout.
//
// Watcher reports changes to a single configuration file so servers can
// re-apply the settings that are safe to change at runtime.
package confloader
