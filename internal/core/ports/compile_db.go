package ports

//go:generate mockgen -source=compile_db.go -destination=mocks/mock_compile_db.go -package=mocks

// CompileCommand is one entry of a compile command database.
type CompileCommand struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
}

// CompileDatabase persists compile command entries.
type CompileDatabase interface {
	// Write replaces the database at path with entries.
	Write(path string, entries []CompileCommand) error
}
