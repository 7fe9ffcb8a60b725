package constant

// DefaultBinary is the player executable looked up in PATH when player.binary is unset.
const DefaultBinary = "mplayer"

// Slave mode arguments passed to every launched player instance.
var SlaveArgs = []string{
	"-slave",
	"-identify",
	"-noquiet",
	"-nomouseinput",
	"-noconsolecontrols",
	"-msglevel", "statusline=6",
}
