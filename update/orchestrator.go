package update

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/graft/check"
	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/forge"
	"github.com/grovetools/graft/git"
	"github.com/grovetools/graft/logging"
	"github.com/grovetools/graft/render"
	"github.com/grovetools/graft/template"
	"github.com/sirupsen/logrus"
)

const (
	// IntegrationBranch holds the review-ready merge result of an
	// update. It is created from the commit the user was on and left
	// behind, uncommitted, for inspection.
	IntegrationBranch = "_graft_update"

	// StagingBranch is the ephemeral orphan branch each update uses
	// twice, once per template render. It is deleted on success.
	StagingBranch = "_graft_update_staging"
)

var (
	stepStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	doneStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34"))
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
)

// Options control one update run. Zero values defer to the project's
// stored metadata, and the new version defers to the resolver.
type Options struct {
	// OldTemplate overrides the template the project is assumed to be
	// generated from. Defaults to the metadata's template.
	OldTemplate string
	// OldVersion overrides the revision the project is assumed to be
	// on. Defaults to the metadata's version.
	OldVersion string
	// NewTemplate switches the project to a different template.
	// Defaults to the metadata's template.
	NewTemplate string
	// NewVersion pins the target revision. Defaults to the latest.
	NewVersion string
	// EnterParameters forces re-prompting even when the parameter
	// schema did not change.
	EnterParameters bool
}

// Orchestrator drives the update state machine against one repository.
// It is strictly sequential: every git and render invocation either
// succeeds or the whole update aborts. Failures before any branch is
// created leave the repository untouched; later failures leave the
// synthetic branches behind for inspection, reclaimable with Cleanup.
type Orchestrator struct {
	Repo     *git.Repository
	Engine   render.Engine
	Resolver Resolver
	Detector Detector

	// Forges selects the API client used for the credential
	// precondition. Defaults to forge.ForHost.
	Forges func(host string) (forge.Forge, error)

	// In and Out carry the pause-before-prompting interaction and the
	// progress lines. They default to the process stdio.
	In  io.Reader
	Out io.Writer

	log *logrus.Entry
}

// NewOrchestrator creates an orchestrator with production defaults.
func NewOrchestrator(repo *git.Repository, engine render.Engine) *Orchestrator {
	return &Orchestrator{
		Repo:     repo,
		Engine:   engine,
		Resolver: NewVersionResolver(repo.Dir()),
		Detector: NewChangeDetector(),
		Forges:   forge.ForHost,
		In:       os.Stdin,
		Out:      os.Stdout,
		log:      logging.NewLogger("update"),
	}
}

// Run performs one update. It returns true when an update was applied
// and false when the project was already on the requested template and
// revision.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (bool, error) {
	// State 1: preflight. Everything here inspects only; a failure
	// leaves the repository exactly as it was.
	if err := o.preflight(ctx); err != nil {
		return false, err
	}

	meta, err := config.ReadMetadata(o.Repo.Dir())
	if err != nil {
		return false, err
	}

	oldRef, newRef, err := o.effectiveTemplates(meta, opts)
	if err != nil {
		return false, err
	}

	f, err := o.forges()(newRef.Host)
	if err != nil {
		return false, err
	}
	if err := check.HasEnvVars(f.TokenEnvVar()); err != nil {
		return false, err
	}

	oldVersion := opts.OldVersion
	if oldVersion == "" {
		oldVersion = meta.Version
	}
	newVersion := opts.NewVersion
	if newVersion == "" {
		if newVersion, err = o.Resolver.Latest(ctx, newRef); err != nil {
			return false, err
		}
	}

	o.log.WithFields(logrus.Fields{
		"oldTemplate": oldRef.Origin,
		"newTemplate": newRef.Origin,
		"oldVersion":  oldVersion,
		"newVersion":  newVersion,
	}).Debug("Resolved update endpoints")

	// State 2: the only early exit.
	if oldRef.Origin == newRef.Origin && oldVersion == newVersion && !opts.EnterParameters {
		fmt.Fprintln(o.Out, "No updates have happened to the template, so no files were updated")
		return false, nil
	}

	// State 3: open the integration branch from the current commit.
	o.step("Creating branch %s for processing the update", IntegrationBranch)
	if err := o.Repo.CheckoutNew(ctx, IntegrationBranch); err != nil {
		return false, err
	}

	// State 4: materialize the old template on an orphan branch. This
	// reconstructs, as a single commit, exactly what the project would
	// look like freshly generated from the old template — the
	// synthetic baseline the real history never recorded.
	o.step("Materializing the current template on %s", StagingBranch)
	if err := o.Repo.CheckoutOrphan(ctx, StagingBranch); err != nil {
		return false, err
	}
	if err := o.Repo.RemoveAll(ctx); err != nil {
		return false, err
	}
	err = render.RenderInto(ctx, o.Engine, render.RenderRequest{
		Template:   oldRef,
		Ref:        oldVersion,
		Parameters: meta.Parameters,
		Command:    "update",
	}, o.Repo.Dir())
	if err != nil {
		return false, err
	}
	if err := o.commitAll(ctx, fmt.Sprintf("Initialize template from version %s", oldVersion)); err != nil {
		return false, err
	}

	// State 5: graft the baseline into the integration branch's
	// ancestry without taking any of its content, so the later merge
	// computes its diff against the baseline instead of unrelated
	// history.
	o.step("Merging the old template history into %s", IntegrationBranch)
	if err := o.Repo.Checkout(ctx, IntegrationBranch); err != nil {
		return false, err
	}
	if err := o.Repo.MergeOurs(ctx, StagingBranch); err != nil {
		return false, err
	}

	// State 6: materialize the new template on the same staging branch.
	o.step("Rendering the updated template on %s", StagingBranch)
	if err := o.Repo.Checkout(ctx, StagingBranch); err != nil {
		return false, err
	}
	if err := o.Repo.RemoveAll(ctx); err != nil {
		return false, err
	}

	params, err := o.parametersForNewRender(ctx, meta, opts, oldRef, newRef, oldVersion, newVersion)
	if err != nil {
		return false, err
	}

	err = render.RenderInto(ctx, o.Engine, render.RenderRequest{
		Template:   newRef,
		Ref:        newVersion,
		Parameters: params,
		Command:    "update",
		PostStages: []render.Stage{render.MetadataStage(newRef, newVersion)},
	}, o.Repo.Dir())
	if err != nil {
		return false, err
	}
	if err := o.commitAll(ctx, fmt.Sprintf("Update template to version %s", newVersion)); err != nil {
		return false, err
	}

	// State 7: merge forward without committing. Conflicts are the
	// deliverable, not an error; only the metadata file is forced to
	// the new template's side, because it is process state rather than
	// user content.
	o.step("Merging the updated template into %s", IntegrationBranch)
	if err := o.Repo.Checkout(ctx, IntegrationBranch); err != nil {
		return false, err
	}
	conflicted, err := o.Repo.MergeNoCommit(ctx, StagingBranch)
	if err != nil {
		return false, err
	}
	if err := o.Repo.CheckoutTheirs(ctx, config.MetadataFileName); err != nil {
		return false, err
	}

	// State 8: cleanup.
	o.step("Removing temporary branch %s", StagingBranch)
	if err := o.Repo.DeleteBranch(ctx, StagingBranch); err != nil {
		return false, err
	}

	if conflicted {
		warning := "The merge produced conflicts; resolve them before committing."
		if status, statusErr := o.Repo.Status(ctx); statusErr == nil && status.UnmergedCount > 0 {
			warning = fmt.Sprintf("The merge produced conflicts in %d file(s); resolve them before committing.",
				status.UnmergedCount)
		}
		fmt.Fprintln(o.Out, warnStyle.Render(warning))
	}
	fmt.Fprintf(o.Out, `%s

Please review the changes with "git status" for any errors or
conflicts. Once you are satisfied with the changes, add, commit,
push, and open a PR with the branch %s.
`, doneStyle.Render("Updating complete!"), IntegrationBranch)

	return true, nil
}

// preflight runs the side-effect-free assertions that must all hold
// before the orchestrator mutates anything.
func (o *Orchestrator) preflight(ctx context.Context) error {
	if err := check.InGitRepo(ctx, o.Repo); err != nil {
		return err
	}
	if err := check.InCleanRepo(ctx, o.Repo); err != nil {
		return err
	}
	if err := check.IsProject(o.Repo.Dir()); err != nil {
		return err
	}
	if err := check.NoBranch(ctx, o.Repo, IntegrationBranch); err != nil {
		return err
	}
	return check.NoBranch(ctx, o.Repo, StagingBranch)
}

// effectiveTemplates resolves the old and new template references,
// explicit overrides winning over the stored metadata.
func (o *Orchestrator) effectiveTemplates(meta *config.Metadata, opts Options) (oldRef, newRef template.Reference, err error) {
	oldLocator := opts.OldTemplate
	if oldLocator == "" {
		oldLocator = meta.Template
	}
	newLocator := opts.NewTemplate
	if newLocator == "" {
		newLocator = meta.Template
	}

	if oldRef, err = template.Parse(oldLocator); err != nil {
		return oldRef, newRef, err
	}
	newRef, err = template.Parse(newLocator)
	return oldRef, newRef, err
}

// parametersForNewRender decides whether fresh parameters are needed
// for the new template and collects them when they are. Switching
// templates always re-prompts; a changed schema re-prompts; an explicit
// request re-prompts even when nothing requires it.
func (o *Orchestrator) parametersForNewRender(ctx context.Context, meta *config.Metadata, opts Options,
	oldRef, newRef template.Reference, oldVersion, newVersion string) (*config.Parameters, error) {

	needed := oldRef.Origin != newRef.Origin
	if !needed {
		changed, err := o.Detector.SchemaChanged(ctx, newRef, oldVersion, newVersion)
		if err != nil {
			return nil, err
		}
		needed = changed
	}

	if needed {
		if oldRef.Origin != newRef.Origin {
			o.pause("You will be prompted for the parameters of the new template."+
				" Please read the docs at https://%s/%s before entering parameters."+
				" Press enter to continue", newRef.Host, newRef.Path)
		} else {
			o.pause("A new template variable has been defined in the updated template." +
				" You will be prompted to enter all of the variables again. Variables" +
				" already configured in your project will have their values set as" +
				" defaults. Press enter to continue")
		}
	}

	if !needed && !opts.EnterParameters {
		return meta.Parameters, nil
	}
	return o.Engine.Prompt(ctx, render.PromptRequest{
		Template: newRef,
		Ref:      newVersion,
		Defaults: meta.Parameters,
		Command:  "update",
	})
}

// commitAll stages the whole working tree and commits it.
func (o *Orchestrator) commitAll(ctx context.Context, message string) error {
	if err := o.Repo.AddAll(ctx); err != nil {
		return err
	}
	return o.Repo.Commit(ctx, message)
}

func (o *Orchestrator) forges() func(string) (forge.Forge, error) {
	if o.Forges != nil {
		return o.Forges
	}
	return forge.ForHost
}

func (o *Orchestrator) step(format string, args ...interface{}) {
	fmt.Fprintln(o.Out, stepStyle.Render(fmt.Sprintf(format, args...)))
}

// pause prints a message and waits for the user to press enter.
func (o *Orchestrator) pause(format string, args ...interface{}) {
	fmt.Fprintf(o.Out, format+" ", args...)
	reader := bufio.NewReader(o.In)
	_, _ = reader.ReadString('\n')
}
