package hcl

// fileRoot is the decoding target for a whole manifest file.
type fileRoot struct {
	Name      string           `hcl:"name,optional"`
	SizeUnit  string           `hcl:"size_unit,optional"`
	Directory string           `hcl:"directory,optional"`
	Artifacts []*artifactBlock `hcl:"artifact,block"`
}

// artifactBlock is the decoding target for an `artifact "<file>" { ... }` block.
type artifactBlock struct {
	File   string `hcl:"file,label"`
	Role   string `hcl:"role"`
	Dir    string `hcl:"dir,optional"`
	Loader string `hcl:"loader,optional"`
	SHA256 string `hcl:"sha256,optional"`
}
