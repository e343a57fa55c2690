// Package task implements SoulLib's Task Runtime (TR): a multi-threaded
// cooperative scheduler supporting suspendable tasks, explicit inter-task
// dependency graphs, and synchronous-wait bridges.
package task
