// Package launcher drives the Prism Launcher command line: importing a
// modpack archive into an instance and starting that instance.
package launcher
