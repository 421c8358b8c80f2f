// Package app provides the main application logic for issuing HTTP requests
// from the command line. It initializes the client from the configuration and
// orchestrates plain requests, progress-reporting downloads and uploads, and
// configuration updates.
package app
