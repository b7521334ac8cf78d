// Package cache provides the in-process evidence cache used by the search
// engine to avoid repeating inference calls for a question and document that
// were already evaluated.
//
// The cache lives for the lifetime of the process. Nothing is persisted.
package cache
