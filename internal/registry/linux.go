package registry

// linuxLocations maps the same categories onto XDG locations. Xcode, Docker
// Desktop and CocoaPods have no per-user cache on Linux and are left out.
func linuxLocations() []Location {
	return []Location{
		{Name: "System Caches", BasePaths: []string{"~/.cache"}},
		{Name: "npm/bun/pnpm", BasePaths: []string{
			"~/.npm/_cacache",
			"~/.bun/install/cache",
			"~/.local/share/pnpm/store",
		}},
		{Name: "node_modules", BasePaths: []string{"~"}, Pattern: "node_modules"},
		{Name: ".next builds", BasePaths: []string{"~"}, Pattern: ".next"},
		{Name: "Claude/AI Tools", BasePaths: []string{
			"~/.claude/debug",
			"~/.cursor",
			"~/.continue",
		}},
		{Name: "Homebrew", BasePaths: []string{"~/.cache/Homebrew"}},
		{Name: "Gradle/Maven", BasePaths: []string{
			"~/.gradle/caches",
			"~/.m2/repository",
		}},
		{Name: "Python", BasePaths: []string{"~/.cache/pip"}},
		{Name: "Logs", BasePaths: []string{"~/.local/share/logs"}},
	}
}
