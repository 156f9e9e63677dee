package model

// Inputs holds the resolved action inputs for a single run
type Inputs struct {
	Name        string // Component name, first segment of the tag
	Environment string // Optional environment label, last segment of the tag
	GitHubToken string `masq:"secret"`
	GitHubSHA   string // Commit the tag points at
	Prerelease  bool
	Disabled    bool
}

// RepositoryContext identifies the target repository
type RepositoryContext struct {
	Owner string
	Repo  string
}

// String returns "owner/repo"
func (r RepositoryContext) String() string {
	return r.Owner + "/" + r.Repo
}

// ReleasePackage is the context threaded through every reconciliation step.
// It is built once per run and must not be modified afterwards.
type ReleasePackage struct {
	TagName    string
	Inputs     Inputs
	Repository RepositoryContext
}

// NewReleasePackage builds a ReleasePackage with a tag name derived from inputs
func NewReleasePackage(inputs Inputs, repo RepositoryContext) *ReleasePackage {
	return &ReleasePackage{
		TagName:    GenerateTagName(inputs.Name, inputs.Environment),
		Inputs:     inputs,
		Repository: repo,
	}
}

// TagRef returns the short reference name used for lookup and update, "tags/<tag>"
func (p *ReleasePackage) TagRef() string {
	return "tags/" + p.TagName
}

// FullTagRef returns the fully qualified reference name, "refs/tags/<tag>"
func (p *ReleasePackage) FullTagRef() string {
	return "refs/" + p.TagRef()
}

// TagMessage returns the annotation message of the tag object
func (p *ReleasePackage) TagMessage() string {
	return "Tagging " + p.TagName
}

// Release is a release resource on the hosting platform
type Release struct {
	ID         int64
	TagName    string
	Name       string
	Body       string
	Prerelease bool
	HTMLURL    string
}

// ReleaseNotes is the generated name and body for a release
type ReleaseNotes struct {
	Name string
	Body string
}

// ReleaseResult summarizes what a run did
type ReleaseResult struct {
	TagName    string
	Skipped    bool
	RefCreated bool // false when an existing reference was moved
	Release    *Release
	Created    bool // false when an existing release was updated
}
