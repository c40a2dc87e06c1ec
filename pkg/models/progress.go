package models

// ProgressFunc receives streaming progress updates. total == 0 means the
// total size is unknown and the consumer must render an un-sized indicator.
type ProgressFunc func(done, total int64)
