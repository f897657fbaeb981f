package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxRecordTitleLength is the maximum length for record titles,
	// including the suffix appended when a record is duplicated.
	MaxRecordTitleLength = 255

	// MaxBulkAssign caps how many records a single assign_to_folder
	// call may carry. Larger batches should be split by the caller.
	MaxBulkAssign = 500

	// MaxOrderLength caps the number of ids stored in one folder order.
	MaxOrderLength = 5000
)
