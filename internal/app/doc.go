// Package app contains the core application logic. It turns a Config into a
// manifest, a set of loaders and the observers for one verification run,
// decoupled from any specific entrypoint like a CLI.
package app
