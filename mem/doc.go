// Package mem implements SoulLib's Memory Accounting Subsystem (MAS): a
// process-wide registry that associates every tracked allocation with a
// typed Tag and derives per-tag statistics, plus three allocators built on
// top of it (a tagged general allocator, a fixed-capacity pool, and a
// linear arena).
package mem
