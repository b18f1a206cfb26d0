package domain

import "path/filepath"

const (
	// StateDirName is the name of the internal state directory.
	StateDirName = ".cmdrule"

	// StoreDirName is the name of the record store directory.
	StoreDirName = "store"

	// YAMLRuleFileName is the name of the YAML rule file.
	YAMLRuleFileName = "cmdrule.yaml"

	// TOMLRuleFileName is the name of the TOML rule file.
	TOMLRuleFileName = "cmdrule.toml"

	// RulefileSchemaVersion is the only rule file schema version understood.
	// Files may omit the version key.
	RulefileSchemaVersion = "1"

	// DefaultNinjaFileName is the default output of the emit command.
	DefaultNinjaFileName = "rules.ninja"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// RuleFileNames lists rule file names in discovery preference order.
func RuleFileNames() []string {
	return []string{YAMLRuleFileName, TOMLRuleFileName}
}

// DefaultStorePath returns the default path for the record store.
// It joins .cmdrule and store.
func DefaultStorePath() string {
	return filepath.Join(StateDirName, StoreDirName)
}
