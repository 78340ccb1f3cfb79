// Package level provides the severity catalog used by the log store.
//
// A [Registry] holds an ordered set of [Level] values, each with a unique
// ordinal [Level.ID] (higher is more severe) and a unique, case-insensitive
// [Level.Name]. Levels are described as flat [Definition] rows and registered
// once at startup; only their enabled state changes afterwards.
//
// The registry applies two independent gates:
//
//   - The minimum level: records below it are never stored. See
//     [Registry.SetMinimum] and [Registry.Reachable].
//   - The per-level enabled flag: stored records of a disabled level stay in
//     the store but are hidden. See [Registry.SetEnabled].
//
// Typical usage starts from the built-in levels and optionally adds
// extensions loaded from YAML:
//
//	defs, err := level.LoadDefinitions(data)
//	reg, err := level.NewRegistry(append(level.Defaults(), defs...)...)
//
//	lvl, ok := reg.Resolve("warn")
package level
