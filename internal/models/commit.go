package models

// CommitResult reports what a configuration commit wrote.
type CommitResult struct {
	PackagesWritten int
	PartsWritten    int
}
