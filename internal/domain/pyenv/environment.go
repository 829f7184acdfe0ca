package pyenv

// DefaultPythonVersion is pinned when an environment does not request a version.
const DefaultPythonVersion = "3.11"

// Environment describes a named, isolated Python runtime managed by micromamba.
type Environment struct {
	// Name identifies the environment. Matching is case-sensitive.
	Name string
	// PythonVersion is the interpreter version pinned at creation time.
	PythonVersion string
	// TrustedHost disables TLS verification while provisioning.
	TrustedHost bool
}

// WithDefaults returns a copy with empty fields replaced by their defaults.
func (e Environment) WithDefaults() Environment {
	if e.PythonVersion == "" {
		e.PythonVersion = DefaultPythonVersion
	}

	return e
}

// PackageInstallOutcome records the result of installing a single package.
type PackageInstallOutcome struct {
	// Name is the requested package specification.
	Name string
	// Success is true when the installer exited with code zero.
	Success bool
	// Err holds the failure reason when Success is false.
	Err error
}

// Failed returns the names of packages whose installation did not succeed.
func Failed(outcomes []PackageInstallOutcome) []string {
	var names []string

	for _, outcome := range outcomes {
		if !outcome.Success {
			names = append(names, outcome.Name)
		}
	}

	return names
}
