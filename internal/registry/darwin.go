package registry

func darwinLocations() []Location {
	return []Location{
		{Name: "System Caches", BasePaths: []string{"~/Library/Caches"}},
		{Name: "Xcode", BasePaths: []string{
			"~/Library/Developer/Xcode/DerivedData",
			"~/Library/Developer/Xcode/Archives",
		}},
		{Name: "npm/bun/pnpm", BasePaths: []string{
			"~/.npm/_cacache",
			"~/.bun/install/cache",
			"~/.pnpm-store",
		}},
		{Name: "node_modules", BasePaths: []string{"~"}, Pattern: "node_modules"},
		{Name: ".next builds", BasePaths: []string{"~"}, Pattern: ".next"},
		{Name: "Claude/AI Tools", BasePaths: []string{
			"~/.claude/debug",
			"~/.cursor",
			"~/.continue",
		}},
		{Name: "Docker", BasePaths: []string{"~/Library/Containers/com.docker.docker/Data/vms"}},
		{Name: "Homebrew", BasePaths: []string{"~/Library/Caches/Homebrew"}},
		{Name: "CocoaPods", BasePaths: []string{"~/Library/Caches/CocoaPods"}},
		{Name: "Gradle/Maven", BasePaths: []string{
			"~/.gradle/caches",
			"~/.m2/repository",
		}},
		{Name: "Python", BasePaths: []string{
			"~/.cache/pip",
			"~/Library/Caches/pip",
		}},
		{Name: "Logs", BasePaths: []string{"~/Library/Logs"}},
	}
}
