package verifier

import "github.com/specialistvlad/binverify/internal/manifest"

// Observer receives progress as a run proceeds. Implementations must not
// block; they are called synchronously from the verification loop.
type Observer interface {
	// Started is called once before the first entry is checked.
	Started(m *manifest.Manifest)
	// Checked is called for each entry as soon as its existence check completes.
	Checked(r CheckResult)
	// MissingArtifacts is called when the existence phase failed and the load
	// phase is being skipped.
	MissingArtifacts(missing []CheckResult)
	// Loaded is called after each load attempt, successful or not.
	Loaded(r CheckResult)
	// Finished is called by Run with the final report.
	Finished(r *Report)
	// Unexpected is called by Run when the run aborted with an error.
	Unexpected(err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Started(*manifest.Manifest)     {}
func (NopObserver) Checked(CheckResult)            {}
func (NopObserver) MissingArtifacts([]CheckResult) {}
func (NopObserver) Loaded(CheckResult)             {}
func (NopObserver) Finished(*Report)               {}
func (NopObserver) Unexpected(error)               {}

// Observers fans every event out to each observer in order.
type Observers []Observer

func (o Observers) Started(m *manifest.Manifest) {
	for _, obs := range o {
		obs.Started(m)
	}
}

func (o Observers) Checked(r CheckResult) {
	for _, obs := range o {
		obs.Checked(r)
	}
}

func (o Observers) MissingArtifacts(missing []CheckResult) {
	for _, obs := range o {
		obs.MissingArtifacts(missing)
	}
}

func (o Observers) Loaded(r CheckResult) {
	for _, obs := range o {
		obs.Loaded(r)
	}
}

func (o Observers) Finished(r *Report) {
	for _, obs := range o {
		obs.Finished(r)
	}
}

func (o Observers) Unexpected(err error) {
	for _, obs := range o {
		obs.Unexpected(err)
	}
}
