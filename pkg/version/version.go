// Package version reports the fundtrail build version.
package version

import "runtime/debug"

// Version is overridden at release time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/fundtrail/pkg/version.Version=v1.2.3"
var Version = "dev"

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}
