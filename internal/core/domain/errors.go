package domain

import "go.trai.ch/zerr"

// The custom command itself never fails. These errors belong to the layers
// that author, validate, render and persist custom commands.
var (
	// ErrConfigNotFound is returned when no rule file is found walking up from the working directory.
	ErrConfigNotFound = zerr.New("could not find cmdrule.yaml or cmdrule.toml")

	// ErrConfigReadFailed is returned when a rule file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read rule file")

	// ErrConfigParseFailed is returned when a rule file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse rule file")

	// ErrUnsupportedFormat is returned for a rule file with an unknown extension.
	ErrUnsupportedFormat = zerr.New("unsupported rule file format")

	// ErrUnknownPolicy is returned when a rule file names a policy that is not tracked.
	ErrUnknownPolicy = zerr.New("unknown policy")

	// ErrUnsupportedSchemaVersion is returned when a rule file declares a schema version other than 1.
	ErrUnsupportedSchemaVersion = zerr.New("unsupported rule file schema version")

	// ErrInvalidPolicyStatus is returned when a policy status is neither OLD nor NEW.
	ErrInvalidPolicyStatus = zerr.New("invalid policy status, expected 'OLD' or 'NEW'")

	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version, expected major.minor[.patch]")

	// ErrUnsupportedVersion is returned when a minimum version is newer than this tool.
	ErrUnsupportedVersion = zerr.New("minimum version is newer than this tool supports")

	// ErrScopeUnderflow is returned when popping the root policy scope.
	ErrScopeUnderflow = zerr.New("cannot pop the root policy scope")

	// ErrSubdirectoryCycle is returned when a rule file includes itself through subdirectories.
	ErrSubdirectoryCycle = zerr.New("subdirectory included recursively")

	// ErrDuplicateOutput is returned when two rules produce the same file.
	ErrDuplicateOutput = zerr.New("output produced by more than one rule")

	// ErrNoOutputs is returned when a rule declares neither outputs nor byproducts.
	ErrNoOutputs = zerr.New("rule declares no outputs")

	// ErrCycleDetected is returned when rules depend on each other's outputs in a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrGraphNotValidated is returned when walking a graph before Validate succeeded.
	ErrGraphNotValidated = zerr.New("graph has not been validated")

	// ErrGenerateFailed is returned when rendering build rules fails.
	ErrGenerateFailed = zerr.New("failed to generate build rules")

	// ErrStoreCreateFailed is returned when the store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create record store directory")

	// ErrStoreReadFailed is returned when stored records cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read stored records")

	// ErrStoreWriteFailed is returned when records cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write stored records")

	// ErrStoreMarshalFailed is returned when records cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal records")

	// ErrStoreUnmarshalFailed is returned when stored records cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal records")

	// ErrStoreSchemaMismatch is returned when stored records use another schema version.
	ErrStoreSchemaMismatch = zerr.New("stored records use an unsupported schema version")

	// ErrUnknownOutputFormat is returned for an unrecognised --format value.
	ErrUnknownOutputFormat = zerr.New("unknown output format, expected 'auto', 'text' or 'json'")

	// ErrUnknownLogFormat is returned for an unrecognised --log-format value.
	ErrUnknownLogFormat = zerr.New("unknown log format, expected 'pretty' or 'json'")

	// ErrRulesChanged is returned by diff --exit-code when rules differ from the snapshot.
	ErrRulesChanged = zerr.New("rules differ from the snapshot")
)
