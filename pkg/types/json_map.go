package types

// JSONMap is a free-form JSON object column, persisted with the GORM json
// serializer.
type JSONMap map[string]any
