// Package platform provides constants and helpers describing how Python
// installations are laid out on each operating system.
package platform

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSDarwin represents the macOS operating system.
	OSDarwin = "darwin"
	// OSFreeBSD represents the FreeBSD operating system.
	OSFreeBSD = "freebsd"
	// OSOpenBSD represents the OpenBSD operating system.
	OSOpenBSD = "openbsd"
	// OSNetBSD represents the NetBSD operating system.
	OSNetBSD = "netbsd"
)

const (
	// BinDir is the script directory of a prefix on unix-like systems.
	BinDir = "bin"
	// WindowsScriptsDir is the script directory of a prefix on Windows.
	WindowsScriptsDir = "Scripts"
	// ExeSuffix is appended to executable names on Windows.
	ExeSuffix = ".exe"
)

// pythonBaseNames are the canonical interpreter names probed in every directory.
var pythonBaseNames = []string{"python", "python3"}
