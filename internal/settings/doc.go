// Package settings persists the configured streams as a YAML file so they
// survive a process restart. Local capture sources are stored by device path
// and re-resolved against the currently discovered devices on load.
package settings
