package service

const (
	ApplicationNumberPrefix = "SOL-"
	applicationNumberLength = 8 // hex digits after the prefix

	MaxAppliances = 100 // per calculation request

	// backupTimeLayout is appended to a migrated CSV file name.
	backupTimeLayout = "20060102_150405"
)
