package config

// Rulefile represents the structure of a cmdrule.yaml or cmdrule.toml file.
type Rulefile struct {
	Version        string            `yaml:"version" toml:"version"`
	MinimumVersion string            `yaml:"minimumVersion" toml:"minimumVersion"`
	Policies       map[string]string `yaml:"policies" toml:"policies"`
	Rules          []RuleDTO         `yaml:"rules" toml:"rules"`
	Subdirectories []string          `yaml:"subdirectories" toml:"subdirectories"`
}

// RuleDTO represents a custom command definition in a rule file.
// Pointer fields distinguish an absent key from an empty value.
type RuleDTO struct {
	Target              string              `yaml:"target" toml:"target"`
	Role                string              `yaml:"role" toml:"role"`
	Outputs             []string            `yaml:"outputs" toml:"outputs"`
	Byproducts          []string            `yaml:"byproducts" toml:"byproducts"`
	Depends             []string            `yaml:"depends" toml:"depends"`
	MainDependency      *string             `yaml:"mainDependency" toml:"mainDependency"`
	Commands            [][]string          `yaml:"commands" toml:"commands"`
	WorkingDirectory    string              `yaml:"workingDirectory" toml:"workingDirectory"`
	Comment             *string             `yaml:"comment" toml:"comment"`
	Depfile             string              `yaml:"depfile" toml:"depfile"`
	JobPool             string              `yaml:"jobPool" toml:"jobPool"`
	ImplicitDepends     []ImplicitDependDTO `yaml:"implicitDepends" toml:"implicitDepends"`
	Verbatim            bool                `yaml:"verbatim" toml:"verbatim"`
	AllowMakeVars       bool                `yaml:"allowMakeVars" toml:"allowMakeVars"`
	UsesTerminal        bool                `yaml:"usesTerminal" toml:"usesTerminal"`
	CommandExpandLists  bool                `yaml:"commandExpandLists" toml:"commandExpandLists"`
	StdPipesUTF8        bool                `yaml:"stdPipesUtf8" toml:"stdPipesUtf8"`
	DependsExplicitOnly bool                `yaml:"dependsExplicitOnly" toml:"dependsExplicitOnly"`
	JobserverAware      bool                `yaml:"jobserverAware" toml:"jobserverAware"`
	Codegen             bool                `yaml:"codegen" toml:"codegen"`
}

// ImplicitDependDTO represents one scanner-discovered dependency.
type ImplicitDependDTO struct {
	Path     string `yaml:"path" toml:"path"`
	Language string `yaml:"language" toml:"language"`
}
