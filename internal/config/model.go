package config

// Model is the unified, format-agnostic representation of one manifest file.
type Model struct {
	// Source is the file the model was loaded from.
	Source    string
	Name      string
	SizeUnit  string
	Directory string
	Artifacts []*Artifact
}

// Artifact is the format-agnostic representation of an `artifact` entry.
type Artifact struct {
	File   string
	Role   string
	Dir    string
	Loader string
	SHA256 string
	// Pos is a human-readable source position used in error messages.
	Pos string
}

// Variables are the values manifest files may interpolate.
type Variables struct {
	OS      string
	Variant string
	Root    string
}
