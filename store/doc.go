// Package store provides the bounded in-memory log record store.
//
// A [Store] accepts loosely ordered logging arguments, classifies them with
// [record.Classify], and keeps the accepted records up to a capacity ceiling,
// evicting the oldest first. Each stored record carries a visibility flag
// computed by a [filter.Chain]; the flag is recomputed for every record
// whenever a level is toggled, the tag selection or mode changes, the search
// text changes, or a filter is added.
//
//	s, err := store.New(store.WithCapacity(500))
//
//	s.Log(level.IDError, "upload failed", record.Tags{"net", "ui"}, err)
//	s.Warn("slow response", []string{"net"})
//
//	s.SetTagMode(tag.ModeIntersection)
//	s.SetActiveTags([]string{"net"})
//
//	for _, r := range s.VisibleRecords() {
//	    fmt.Println(r.Sequence, r.Level.Label(), r.Text)
//	}
//
// Rejected calls return false and leave the store untouched. The reason is
// reported to the configured [*slog.Logger] at debug level and to the
// [Observer], if any.
//
// A [Store] is safe for concurrent use; every operation runs to completion
// before the next one starts. Presentation code can follow changes with
// [Store.Subscribe].
//
// Use [Config] to build a store from CLI flags:
//
//	cfg := store.NewConfig()
//	cfg.RegisterFlags(rootCmd.Flags())
//	cfg.RegisterCompletions(rootCmd)
//
//	s, err := cfg.NewStore()
package store
