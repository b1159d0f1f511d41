package domain

import "go.trai.ch/zerr"

var (
	// ErrDuplicateTarget is returned when a target name collides with an already loaded target.
	ErrDuplicateTarget = zerr.New("duplicate target")

	// ErrMissingTargetName is returned when a target descriptor has no name.
	ErrMissingTargetName = zerr.New("target has no name")

	// ErrEmptySources is returned when a target declares no sources.
	ErrEmptySources = zerr.New("target has no sources")

	// ErrDuplicateSource is returned when a target lists the same source file twice.
	ErrDuplicateSource = zerr.New("duplicate source")

	// ErrCyclicDependency is returned when the target dependency graph contains a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrUnresolvedDependency is returned when targets reference dependencies that were never loaded.
	ErrUnresolvedDependency = zerr.New("unresolved dependency")

	// ErrGraphNotResolved is returned when propagation is requested before a successful Resolve.
	ErrGraphNotResolved = zerr.New("target graph has not been resolved")

	// ErrInvalidFeatureTest is returned for a malformed feature test descriptor.
	ErrInvalidFeatureTest = zerr.New("invalid feature test")

	// ErrInvalidGeneratedFile is returned for a malformed generated file descriptor.
	ErrInvalidGeneratedFile = zerr.New("invalid generated file")

	// ErrDefinitionCollision is returned when a feature test variable shadows an explicit definition.
	ErrDefinitionCollision = zerr.New("feature test variable collides with explicit definition")

	// ErrGenerationFailed is returned when a generated file cannot be rendered.
	ErrGenerationFailed = zerr.New("failed to generate file")

	// ErrTemplateNotFound is returned when a generated file template does not exist.
	ErrTemplateNotFound = zerr.New("template not found")

	// ErrUnknownGenerator is returned when no renderer is registered for a generated file kind.
	ErrUnknownGenerator = zerr.New("unknown generator")

	// ErrCompileFailed is returned when a source file fails to compile.
	ErrCompileFailed = zerr.New("compilation failed")

	// ErrCompileSkipped is recorded for sources that were never submitted to the compiler.
	ErrCompileSkipped = zerr.New("compilation skipped")

	// ErrArchiveFailed is returned when the archiver fails.
	ErrArchiveFailed = zerr.New("archive failed")

	// ErrArchiveSkipped is recorded when an archive is skipped because a contributing compile failed.
	ErrArchiveSkipped = zerr.New("archive skipped due to upstream compile failure")

	// ErrBuildFailed is returned when any stage of a build recorded an error.
	ErrBuildFailed = zerr.New("build failed")

	// ErrProcessStartFailed is returned when a subprocess cannot be started.
	ErrProcessStartFailed = zerr.New("failed to start process")

	// ErrEmptyCommand is returned when a command line has no executable.
	ErrEmptyCommand = zerr.New("empty command")

	// ErrInvalidOptions is returned when build options fail validation.
	ErrInvalidOptions = zerr.New("invalid build options")

	// ErrInvalidConfig is returned when the project configuration fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigReadFailed is returned when a configuration or descriptor file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a configuration or descriptor file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no project file is found.
	ErrConfigNotFound = zerr.New("could not find smelt.yaml")

	// ErrUnsupportedScript is returned when no target loader handles a script's file extension.
	ErrUnsupportedScript = zerr.New("unsupported target script")

	// ErrStoreCreateFailed is returned when the report directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create report directory")

	// ErrStoreReadFailed is returned when the persisted report cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read report")

	// ErrStoreUnmarshalFailed is returned when the persisted report cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal report")

	// ErrStoreMarshalFailed is returned when the report cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal report")

	// ErrStoreWriteFailed is returned when the report cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write report")

	// ErrNoReport is returned when no build has persisted a report yet.
	ErrNoReport = zerr.New("no build report found")

	// ErrCompileDatabaseWriteFailed is returned when compile_commands.json cannot be written.
	ErrCompileDatabaseWriteFailed = zerr.New("failed to write compile command database")

	// ErrInterrupted is returned when the user stops the build from the terminal UI.
	ErrInterrupted = zerr.New("build interrupted")
)
